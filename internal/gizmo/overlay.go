package gizmo

import (
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/pointer"
)

func (t *Transformer) State() State                { return t.state }
func (t *Transformer) ActiveHandle() HandleKind    { return t.activeHandle }
func (t *Transformer) Initialized() bool           { return t.initialized }
func (t *Transformer) Angle() float64              { return t.angle }
func (t *Transformer) Rotation() float64           { return t.rotation }
func (t *Transformer) Position() engine.Point      { return t.position }
func (t *Transformer) PivotWorld() engine.Point    { return t.pivotWorld }
func (t *Transformer) ClippedLocal() engine.Rect   { return t.clippedLocal }
func (t *Transformer) UnclippedLocal() engine.Rect { return t.unclippedLocal }
func (t *Transformer) Wireframe() *Wireframe       { return t.wireframe }
func (t *Transformer) Region() *pointer.Region     { return t.region }
func (t *Transformer) Group() []Target             { return t.group }

// Handle returns the handle of the given kind.
func (t *Transformer) Handle(kind HandleKind) *Handle {
	return t.handles[kind]
}

// Handles returns the handles in HandleKinds order.
func (t *Transformer) Handles() []*Handle {
	out := make([]*Handle, 0, len(HandleKinds))
	for _, k := range HandleKinds {
		out = append(out, t.handles[k])
	}
	return out
}

// Cursor is the pointer hint for the current interaction.
func (t *Transformer) Cursor() string {
	if t.state == HandleDragging {
		if h := t.handles[t.activeHandle]; h != nil {
			return h.Cursor()
		}
	}
	return t.cursor
}

// CursorAt is the hover hint for a global point while idle.
func (t *Transformer) CursorAt(g engine.Point) string {
	if t.state != Idle || !t.initialized {
		return t.Cursor()
	}
	local := t.ToLocal(g)
	for i := len(HandleKinds) - 1; i >= 0; i-- {
		if h := t.handles[HandleKinds[i]]; h.Contains(local) {
			return h.Cursor()
		}
	}
	if t.wireframe.HitArea().ContainsPoint(local) {
		return t.wireframe.Cursor()
	}
	return cursorDefault
}

// DrawCommands returns the overlay: the frame outline followed by the
// handles. Nothing is drawn before initialization.
func (t *Transformer) DrawCommands() []engine.DrawCommand {
	if !t.initialized {
		return nil
	}
	world := t.WorldTransform()
	cmds := make([]engine.DrawCommand, 0, 1+len(HandleKinds))
	cmds = append(cmds, t.wireframe.DrawCommand(world))
	for _, h := range t.Handles() {
		cmds = append(cmds, h.DrawCommand(world))
	}
	return cmds
}

// HandleSnapshot is a handle's serializable state.
type HandleSnapshot struct {
	Kind     HandleKind   `json:"kind"`
	Local    engine.Point `json:"local"`
	World    engine.Point `json:"world"`
	Cursor   string       `json:"cursor"`
	Dragging bool         `json:"dragging"`
}

// Snapshot is the transformer's serializable state, sent to clients so they
// can draw the gizmo without running it.
type Snapshot struct {
	Initialized    bool             `json:"initialized"`
	State          State            `json:"state"`
	ActiveHandle   HandleKind       `json:"activeHandle,omitempty"`
	Angle          float64          `json:"angle"`
	Rotation       float64          `json:"rotation"`
	Pivot          engine.Point     `json:"pivot"`
	ClippedLocal   engine.Rect      `json:"clippedLocal"`
	UnclippedLocal engine.Rect      `json:"unclippedLocal"`
	Transform      []float64        `json:"transform"`
	Cursor         string           `json:"cursor"`
	Handles        []HandleSnapshot `json:"handles"`
}

// Snapshot captures the current state.
func (t *Transformer) Snapshot() Snapshot {
	world := t.WorldTransform()
	s := Snapshot{
		Initialized:    t.initialized,
		State:          t.state,
		ActiveHandle:   t.activeHandle,
		Angle:          t.angle,
		Rotation:       t.rotation,
		Pivot:          t.pivotWorld,
		ClippedLocal:   t.clippedLocal,
		UnclippedLocal: t.unclippedLocal,
		Transform:      world.ToSlice(),
		Cursor:         t.Cursor(),
		Handles:        make([]HandleSnapshot, 0, len(HandleKinds)),
	}
	for _, h := range t.Handles() {
		s.Handles = append(s.Handles, HandleSnapshot{
			Kind:     h.Kind(),
			Local:    h.Position(),
			World:    world.Apply(h.Position()),
			Cursor:   h.Cursor(),
			Dragging: h.Dragging(),
		})
	}
	return s
}
