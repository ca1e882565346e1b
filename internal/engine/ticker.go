package engine

// Ticker runs deferred callbacks once per frame.
//
// Callbacks registered with AddOnce run on the next Tick, after the current
// layout pass has settled. A callback added while a tick is running is
// deferred to the following tick.
type Ticker struct {
	pending []func()
	frame   int
}

// NewTicker creates an idle ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// AddOnce schedules fn to run exactly once on the next Tick.
func (t *Ticker) AddOnce(fn func()) {
	if fn == nil {
		return
	}
	t.pending = append(t.pending, fn)
}

// Tick advances one frame and runs the callbacks queued before it started.
func (t *Ticker) Tick() {
	t.frame++
	queued := t.pending
	t.pending = nil
	for _, fn := range queued {
		fn()
	}
}

// Pending returns the number of callbacks waiting for the next tick.
func (t *Ticker) Pending() int {
	return len(t.pending)
}

// Frame returns the number of ticks run so far.
func (t *Ticker) Frame() int {
	return t.frame
}
