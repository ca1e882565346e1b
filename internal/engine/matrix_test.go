package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/document"
)

func TestMultiplyAppliesRightOperandFirst(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))

	x, y := m.TransformPoint(1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 2.0, y)
}

func TestRotateQuarterTurn(t *testing.T) {
	p := Rotate(math.Pi / 2).Apply(Pt(1, 0))
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)
}

func TestInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix2D
	}{
		{"identity", Identity()},
		{"translate", Translate(-7, 3)},
		{"scale", Scale(4, 0.25)},
		{"composite", Translate(5, 9).Multiply(Rotate(0.7)).Multiply(Scale(2, -3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.m.Multiply(tt.m.Invert()).IsIdentity())
			assert.True(t, tt.m.Invert().Multiply(tt.m).IsIdentity())
		})
	}

	t.Run("singular", func(t *testing.T) {
		assert.Equal(t, Identity(), Scale(0, 1).Invert())
	})
}

func TestTransformRect(t *testing.T) {
	r := Rotate(math.Pi/2).TransformRect(Rect{Width: 20, Height: 10})

	assert.InDelta(t, -10, r.X, 1e-9)
	assert.InDelta(t, 0, r.Y, 1e-9)
	assert.InDelta(t, 10, r.Width, 1e-9)
	assert.InDelta(t, 20, r.Height, 1e-9)
}

func TestFromTransform(t *testing.T) {
	m := FromTransform(document.Transform{X: 100, Y: 50, SX: 2, SY: 2, AX: 10, AY: 10})

	// The anchor lands on (x+ax, y+ay) regardless of scale.
	p := m.Apply(Pt(10, 10))
	assert.InDelta(t, 110, p.X, 1e-9)
	assert.InDelta(t, 60, p.Y, 1e-9)
}

func TestTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   document.Transform
	}{
		{"plain", document.Transform{X: 10, Y: 20, SX: 1, SY: 1}},
		{"rotated", document.Transform{X: -4, Y: 7, SX: 1.5, SY: 0.5, R: 33}},
		{"anchored", document.Transform{X: 200, Y: 100, SX: 2, SY: 3, R: -80, AX: 25, AY: 40}},
		{"skewed", document.Transform{X: 1, Y: 2, SX: 1, SY: 1, SkewX: 20, SkewY: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromTransform(tt.in)
			out := ToTransform(m, tt.in.AX, tt.in.AY)
			require.True(t, FromTransform(out).ApproxEqual(m, 1e-9), "got %+v", out)
			assert.InDelta(t, tt.in.X, out.X, 1e-9)
			assert.InDelta(t, tt.in.Y, out.Y, 1e-9)
			assert.InDelta(t, tt.in.SX, out.SX, 1e-9)
			assert.InDelta(t, tt.in.SY, out.SY, 1e-9)
		})
	}
}

func TestToTransformNonUniformScaleOfRotated(t *testing.T) {
	// Scaling a rotated object along world axes shears it.
	m := Scale(2, 1).Multiply(Rotate(math.Pi / 4))
	out := ToTransform(m, 0, 0)

	assert.NotZero(t, out.SkewX)
	assert.True(t, FromTransform(out).ApproxEqual(m, 1e-9))
}
