package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 5, 10, 10}, Rect{0, 0, 30, 15}},
		{"nested", Rect{0, 0, 10, 10}, Rect{2, 2, 2, 2}, Rect{0, 0, 10, 10}},
		{"empty left", Rect{}, Rect{3, 4, 5, 6}, Rect{3, 4, 5, 6}},
		{"empty right", Rect{3, 4, 5, 6}, Rect{100, 100, 0, 0}, Rect{3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Union(tt.b))
		})
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{X: -50, Y: -50, Width: 100, Height: 100}

	assert.True(t, outer.ContainsRect(outer, 0))
	assert.True(t, outer.ContainsRect(Rect{X: -10, Y: 0, Width: 60, Height: 50}, 0))
	assert.False(t, outer.ContainsRect(Rect{X: -10, Y: 0, Width: 61, Height: 50}, 0))
	assert.True(t, outer.ContainsRect(Rect{X: -50.0000001, Y: -50, Width: 1, Height: 1}, 1e-6))
}

func TestRectCenter(t *testing.T) {
	assert.Equal(t, Pt(5, 15), Rect{X: 0, Y: 10, Width: 10, Height: 10}.Center())
}
