package pointer

import "github.com/inamate/transformer/internal/engine"

// Dispatcher turns raw host pointer input into region events.
// It is not safe for concurrent use; hosts feed it from a single event loop.
type Dispatcher struct {
	root    *Region
	pressed *Region
}

// NewDispatcher creates a dispatcher over the region tree rooted at root.
func NewDispatcher(root *Region) *Dispatcher {
	return &Dispatcher{root: root}
}

// Root returns the root region.
func (d *Dispatcher) Root() *Region {
	return d.root
}

// Pressed returns the region that received the active down event, or nil.
func (d *Dispatcher) Pressed() *Region {
	return d.pressed
}

// Down delivers a down event to the region under p.
func (d *Dispatcher) Down(p engine.Point) {
	target := d.root.HitTest(p)
	d.pressed = target
	if target == nil {
		return
	}
	bubble(&Event{Type: Down, Global: p, Target: target}, target, nil)
}

// Move delivers a global move event to every region in the tree.
func (d *Dispatcher) Move(p engine.Point) {
	var regions []*Region
	d.root.walk(func(r *Region) {
		if len(r.listeners[GlobalMove]) > 0 {
			regions = append(regions, r)
		}
	})

	e := &Event{Type: GlobalMove, Global: p, Target: d.root.HitTest(p)}
	for _, r := range regions {
		r.emit(e)
	}
}

// Up delivers an up event to the region under p, then UpOutside to the
// pressed region if the release happened away from it.
func (d *Dispatcher) Up(p engine.Point) {
	target := d.root.HitTest(p)
	if target != nil {
		bubble(&Event{Type: Up, Global: p, Target: target}, target, nil)
	}
	d.releaseOutside(p, target)
}

// UpOutside handles a release that happened outside the canvas entirely.
func (d *Dispatcher) UpOutside(p engine.Point) {
	d.releaseOutside(p, nil)
}

func (d *Dispatcher) releaseOutside(p engine.Point, upTarget *Region) {
	pressed := d.pressed
	d.pressed = nil
	if pressed == nil || (upTarget != nil && pressed.contains(upTarget)) {
		return
	}
	bubble(&Event{Type: UpOutside, Global: p, Target: pressed}, pressed, upTarget)
}

// bubble emits e from target towards the root. When stopAt is non-nil the
// walk ends at the first ancestor that also contains stopAt, since that
// region already saw the release.
func bubble(e *Event, target, stopAt *Region) {
	for r := target; r != nil; r = r.parent {
		if stopAt != nil && r.contains(stopAt) {
			return
		}
		r.emit(e)
		if e.stopped {
			return
		}
	}
}
