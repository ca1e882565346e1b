package gizmo

import "github.com/inamate/transformer/internal/engine"

const (
	wireframeColor     = "#55c1ff"
	wireframeThickness = 1.0
)

// Wireframe is the gizmo's outline. Its hit area is the whole drawn
// rectangle, so grabbing anywhere inside the frame moves the group.
type Wireframe struct {
	hitArea engine.Rect
	path    []engine.PathCommand
}

// Draw replaces the outline with r and makes r the hit area.
func (w *Wireframe) Draw(r engine.Rect) {
	w.path = engine.RectPath(r)
	w.hitArea = r
}

// HitArea returns the last drawn rectangle.
func (w *Wireframe) HitArea() engine.Rect {
	return w.hitArea
}

// Cursor is the hint shown over the frame body.
func (w *Wireframe) Cursor() string {
	return "move"
}

// DrawCommand strokes the outline. world is the owner's world transform.
func (w *Wireframe) DrawCommand(world engine.Matrix2D) engine.DrawCommand {
	return engine.DrawCommand{
		Op:          "path",
		ObjectID:    "wireframe",
		Transform:   world.ToSlice(),
		Path:        w.path,
		Stroke:      wireframeColor,
		StrokeWidth: wireframeThickness,
		Opacity:     1,
	}
}
