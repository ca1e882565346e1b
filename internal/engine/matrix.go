package engine

import (
	"math"

	"github.com/inamate/transformer/internal/document"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// TranslateBy returns a translation matrix moving the origin to p.
func TranslateBy(p Point) Matrix2D {
	return Translate(p.X, p.Y)
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Apply transforms p.
func (m Matrix2D) Apply(p Point) Point {
	x, y := m.TransformPoint(p.X, p.Y)
	return Point{X: x, Y: y}
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	x0, y0 := m.TransformPoint(r.X, r.Y)
	x1, y1 := m.TransformPoint(r.X+r.Width, r.Y)
	x2, y2 := m.TransformPoint(r.X+r.Width, r.Y+r.Height)
	x3, y3 := m.TransformPoint(r.X, r.Y+r.Height)

	minX := min(x0, x1, x2, x3)
	minY := min(y0, y1, y2, y3)
	maxX := max(x0, x1, x2, x3)
	maxY := max(y0, y1, y2, y3)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}

// FromTransform creates a local matrix from document transform properties.
//
// Position (x, y) places the anchor's origin, the anchor (ax, ay) is the
// rotation/scale center. Rotation and skew are in degrees.
func FromTransform(t document.Transform) Matrix2D {
	r := t.R * math.Pi / 180.0
	kx := t.SkewX * math.Pi / 180.0
	ky := t.SkewY * math.Pi / 180.0

	a := math.Cos(r+ky) * t.SX
	b := math.Sin(r+ky) * t.SX
	c := -math.Sin(r-kx) * t.SY
	d := math.Cos(r-kx) * t.SY

	return Matrix2D{
		a,
		b,
		c,
		d,
		t.X + t.AX - (a*t.AX + c*t.AY),
		t.Y + t.AY - (b*t.AX + d*t.AY),
	}
}

// ToTransform decomposes a local matrix back into document transform
// properties around the given anchor. It is the inverse of FromTransform for
// matrices without reflection.
func ToTransform(m Matrix2D, ax, ay float64) document.Transform {
	a, b, c, d := m[0], m[1], m[2], m[3]

	skewX := -math.Atan2(-c, d)
	skewY := math.Atan2(b, a)

	t := document.Transform{
		SX: math.Hypot(a, b),
		SY: math.Hypot(c, d),
		AX: ax,
		AY: ay,
	}

	delta := math.Abs(skewX + skewY)
	if delta < 1e-5 || math.Abs(2*math.Pi-delta) < 1e-5 {
		t.R = skewY * 180.0 / math.Pi
	} else {
		t.SkewX = skewX * 180.0 / math.Pi
		t.SkewY = skewY * 180.0 / math.Pi
	}

	t.X = m[4] - ax + (a*ax + c*ay)
	t.Y = m[5] - ay + (b*ax + d*ay)
	return t
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	return m.ApproxEqual(Identity(), 1e-10)
}

// ApproxEqual reports whether every component of m is within eps of other.
func (m Matrix2D) ApproxEqual(other Matrix2D, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}
