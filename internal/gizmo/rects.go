package gizmo

import (
	"math"

	"github.com/inamate/transformer/internal/engine"
)

// scalePivot returns the fixed point of a corner drag in local space: the
// frame center for centered scaling, otherwise the opposite corner.
func (t *Transformer) scalePivot(kind HandleKind, s engine.Rect) engine.Point {
	if t.opts.CenteredScaling {
		return s.Center()
	}
	switch kind {
	case TopLeft:
		return engine.Pt(s.Right(), s.Bottom())
	case TopRight:
		return engine.Pt(s.X, s.Bottom())
	case BottomLeft:
		return engine.Pt(s.Right(), s.Y)
	}
	return engine.Pt(s.X, s.Y)
}

// proposeScaledRect is the crop rectangle a corner drag to p asks for. It
// never flips across the pivot and never shrinks below the minimum size.
func (t *Transformer) proposeScaledRect(kind HandleKind, p, pivot engine.Point) engine.Rect {
	if t.opts.CenteredScaling {
		w := math.Max(t.minClipW, math.Abs(p.X-pivot.X)*2)
		h := math.Max(t.minClipH, math.Abs(p.Y-pivot.Y)*2)
		return engine.Rect{X: pivot.X - w/2, Y: pivot.Y - h/2, Width: w, Height: h}
	}

	switch kind {
	case TopLeft:
		left := math.Min(p.X, pivot.X-t.minClipW)
		top := math.Min(p.Y, pivot.Y-t.minClipH)
		return engine.Rect{X: left, Y: top, Width: pivot.X - left, Height: pivot.Y - top}
	case TopRight:
		right := math.Max(p.X, pivot.X+t.minClipW)
		top := math.Min(p.Y, pivot.Y-t.minClipH)
		return engine.Rect{X: pivot.X, Y: top, Width: right - pivot.X, Height: pivot.Y - top}
	case BottomLeft:
		left := math.Min(p.X, pivot.X-t.minClipW)
		bottom := math.Max(p.Y, pivot.Y+t.minClipH)
		return engine.Rect{X: left, Y: pivot.Y, Width: pivot.X - left, Height: bottom - pivot.Y}
	}
	right := math.Max(p.X, pivot.X+t.minClipW)
	bottom := math.Max(p.Y, pivot.Y+t.minClipH)
	return engine.Rect{X: pivot.X, Y: pivot.Y, Width: right - pivot.X, Height: bottom - pivot.Y}
}

// scaleRectAbout scales src about pivot, normalizing to a positive extent
// no smaller than the minimum size.
func (t *Transformer) scaleRectAbout(src engine.Rect, pivot engine.Point, sx, sy float64) engine.Rect {
	left := pivot.X + (src.X-pivot.X)*sx
	top := pivot.Y + (src.Y-pivot.Y)*sy
	right := pivot.X + (src.Right()-pivot.X)*sx
	bottom := pivot.Y + (src.Bottom()-pivot.Y)*sy

	return engine.Rect{
		X:      math.Min(left, right),
		Y:      math.Min(top, bottom),
		Width:  math.Max(t.minClipW, math.Abs(right-left)),
		Height: math.Max(t.minClipH, math.Abs(bottom-top)),
	}
}

// clampRectToMax trims s so it lies within limit, keeping the minimum size.
func (t *Transformer) clampRectToMax(s, limit engine.Rect) engine.Rect {
	if s.X < limit.X {
		d := limit.X - s.X
		s.X = limit.X
		s.Width = math.Max(t.minClipW, s.Width-d)
	}
	if s.Y < limit.Y {
		d := limit.Y - s.Y
		s.Y = limit.Y
		s.Height = math.Max(t.minClipH, s.Height-d)
	}
	if s.Right() > limit.Right() {
		s.Width = math.Max(t.minClipW, limit.Right()-s.X)
	}
	if s.Bottom() > limit.Bottom() {
		s.Height = math.Max(t.minClipH, limit.Bottom()-s.Y)
	}
	return s
}

// deltaScale scales by (sx, sy) along the axes of a frame rotated by angle,
// about pivot (world).
func deltaScale(pivot engine.Point, angle, sx, sy float64) engine.Matrix2D {
	return engine.TranslateBy(pivot).
		Multiply(engine.Rotate(angle)).
		Multiply(engine.Scale(sx, sy)).
		Multiply(engine.Rotate(-angle)).
		Multiply(engine.Translate(-pivot.X, -pivot.Y))
}

// deltaRotate rotates by da about pivot (world).
func deltaRotate(pivot engine.Point, da float64) engine.Matrix2D {
	return engine.TranslateBy(pivot).
		Multiply(engine.Rotate(da)).
		Multiply(engine.Translate(-pivot.X, -pivot.Y))
}
