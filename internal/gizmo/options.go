package gizmo

import (
	"log/slog"

	"github.com/inamate/transformer/internal/engine"
)

// Target is the capability the transformer needs from a scene node.
type Target interface {
	Position() engine.Point
	SetPosition(p engine.Point)
	LocalTransform() engine.Matrix2D
	SetLocalTransform(m engine.Matrix2D)
	// Bounds returns the world-space axis-aligned bounding box.
	Bounds() engine.Rect
	// Parent returns nil for a detached target.
	Parent() engine.Space
	SetMask(m *engine.Mask)
}

// Scheduler runs a callback once after the current layout pass.
type Scheduler interface {
	AddOnce(fn func())
}

// Observer is told when a gesture that may have changed targets finishes.
// kind is "" for a whole-group move.
type Observer interface {
	DragEnded(kind HandleKind)
}

// Options configures a Transformer.
type Options struct {
	Group []Target

	// CenteredScaling pivots corner scaling about the frame center instead of
	// the opposite corner.
	CenteredScaling bool

	// MinClipW and MinClipH floor the crop rectangle. Default 1.
	MinClipW float64
	MinClipH float64

	// RotateHandleOffset is the distance of the rotate handle above the top
	// edge. Default 30.
	RotateHandleOffset float64

	Observer Observer
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MinClipW <= 0 {
		o.MinClipW = 1
	}
	if o.MinClipH <= 0 {
		o.MinClipH = 1
	}
	if o.RotateHandleOffset == 0 {
		o.RotateHandleOffset = 30
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
