package gizmo

import (
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/pointer"
)

const (
	handleRadius      = 6.0
	handleFill        = "#ffffff"
	handleStroke      = "#00000066"
	cursorGrabbing    = "grabbing"
	handleStrokeWidth = 1.0
)

// Callbacks receives the semantic drag events of a handle.
type Callbacks interface {
	BeginDrag(kind HandleKind, start engine.Point)
	UpdateDrag(kind HandleKind, p engine.Point)
	EndDrag()
}

// Handle is a draggable control point. It only adapts pointer events to
// Callbacks; all geometry lives in the Transformer.
type Handle struct {
	kind       HandleKind
	restCursor string
	cursor     string
	callbacks  Callbacks
	dragging   bool

	// position is in the owning transformer's local space.
	position engine.Point
}

// NewHandle creates a handle of the given kind.
func NewHandle(kind HandleKind, cursor string, callbacks Callbacks) *Handle {
	return &Handle{
		kind:       kind,
		restCursor: cursor,
		cursor:     cursor,
		callbacks:  callbacks,
	}
}

func (h *Handle) Kind() HandleKind           { return h.kind }
func (h *Handle) Cursor() string             { return h.cursor }
func (h *Handle) Dragging() bool             { return h.dragging }
func (h *Handle) Position() engine.Point     { return h.position }
func (h *Handle) SetPosition(p engine.Point) { h.position = p }

// Contains reports whether a point in the owner's local space hits the dot.
func (h *Handle) Contains(local engine.Point) bool {
	d := local.Sub(h.position)
	return d.X*d.X+d.Y*d.Y <= handleRadius*handleRadius
}

// Bind registers the handle's listeners on its hit region.
func (h *Handle) Bind(r *pointer.Region) {
	r.On(pointer.Down, h.onDown)
	r.On(pointer.GlobalMove, h.onMove)
	r.On(pointer.Up, h.onUp)
	r.On(pointer.UpOutside, h.onUp)
}

func (h *Handle) onDown(e *pointer.Event) {
	h.dragging = true
	h.cursor = cursorGrabbing
	h.callbacks.BeginDrag(h.kind, e.Global)
	e.StopPropagation()
}

func (h *Handle) onMove(e *pointer.Event) {
	if !h.dragging {
		return
	}
	h.callbacks.UpdateDrag(h.kind, e.Global)
}

func (h *Handle) onUp(e *pointer.Event) {
	if !h.dragging {
		return
	}
	h.dragging = false
	h.cursor = h.restCursor
	h.callbacks.EndDrag()
	e.StopPropagation()
}

// DrawCommand paints the dot. world is the owner's world transform.
func (h *Handle) DrawCommand(world engine.Matrix2D) engine.DrawCommand {
	return engine.DrawCommand{
		Op:          "path",
		ObjectID:    string(h.kind),
		Transform:   world.Multiply(engine.TranslateBy(h.position)).ToSlice(),
		Path:        engine.EllipsePath(handleRadius, handleRadius),
		Fill:        handleFill,
		Stroke:      handleStroke,
		StrokeWidth: handleStrokeWidth,
		Opacity:     1,
	}
}
