package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldTransformFollowsParent(t *testing.T) {
	root := NewNode("root", "group", Translate(100, 0))
	child := NewNode("child", "shape", Translate(10, 10))
	root.AddChild(child)

	assert.Equal(t, Pt(110, 10), child.ToGlobal(Pt(0, 0)))
	assert.Equal(t, Pt(0, 0), child.ToLocal(Pt(110, 10)))

	root.SetPosition(Pt(0, 0))
	assert.Equal(t, Pt(10, 10), child.ToGlobal(Pt(0, 0)))
}

func TestParentIsNilWhenDetached(t *testing.T) {
	n := NewNode("n", "shape", Identity())
	assert.Nil(t, n.Parent())

	root := NewNode("root", "group", Identity())
	root.AddChild(n)
	require.NotNil(t, n.Parent())

	root.RemoveChild(n)
	assert.Nil(t, n.Parent())
	assert.Empty(t, root.Children)
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a", "group", Identity())
	b := NewNode("b", "group", Identity())
	n := NewNode("n", "shape", Identity())

	a.AddChild(n)
	b.AddChild(n)

	assert.Empty(t, a.Children)
	assert.Equal(t, b, n.ParentNode())
}

func TestBounds(t *testing.T) {
	root := NewNode("root", "group", Identity())
	g := NewNode("g", "group", Translate(10, 10))
	a := NewNode("a", "shape", Identity())
	a.Content = Rect{Width: 20, Height: 20}
	b := NewNode("b", "shape", Translate(50, 0))
	b.Content = Rect{Width: 10, Height: 40}
	hidden := NewNode("hidden", "shape", Translate(-500, -500))
	hidden.Content = Rect{Width: 1, Height: 1}
	hidden.Visible = false

	root.AddChild(g)
	g.AddChild(a)
	g.AddChild(b)
	g.AddChild(hidden)

	assert.Equal(t, Rect{X: 10, Y: 10, Width: 60, Height: 40}, g.Bounds())
	assert.Equal(t, Rect{}, NewNode("empty", "group", Identity()).Bounds())
}

func TestMaskFollowsOwner(t *testing.T) {
	owner := NewNode("owner", "group", Translate(5, 5))
	m := &Mask{Owner: owner, Rect: Rect{Width: 10, Height: 10}}

	assert.Equal(t, Translate(5, 5), m.WorldTransform())
	owner.SetPosition(Pt(7, 8))
	assert.Equal(t, Translate(7, 8), m.WorldTransform())

	assert.Equal(t, Identity(), (&Mask{}).WorldTransform())
}

func TestTickerRunsOnce(t *testing.T) {
	tk := NewTicker()
	var calls []string

	tk.AddOnce(func() {
		calls = append(calls, "first")
		tk.AddOnce(func() { calls = append(calls, "nested") })
	})
	tk.AddOnce(nil)
	assert.Equal(t, 1, tk.Pending())

	tk.Tick()
	assert.Equal(t, []string{"first"}, calls)
	assert.Equal(t, 1, tk.Pending())

	tk.Tick()
	tk.Tick()
	assert.Equal(t, []string{"first", "nested"}, calls)
	assert.Equal(t, 3, tk.Frame())
	assert.Zero(t, tk.Pending())
}
