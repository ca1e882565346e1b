package pointer

import "github.com/inamate/transformer/internal/engine"

// HitFunc reports whether a global point lies inside a region.
type HitFunc func(global engine.Point) bool

// Region is a node in the hit-test tree. A region with a nil HitFunc is never
// hit itself, but still receives events bubbling up from its children.
type Region struct {
	Name string

	hit       HitFunc
	parent    *Region
	children  []*Region
	listeners map[Type][]Listener
}

// NewRegion creates a detached region.
func NewRegion(name string, hit HitFunc) *Region {
	return &Region{
		Name:      name,
		hit:       hit,
		listeners: make(map[Type][]Listener),
	}
}

// On registers fn for events of type t.
func (r *Region) On(t Type, fn Listener) {
	r.listeners[t] = append(r.listeners[t], fn)
}

// AddChild appends child on top of existing children, detaching it from any
// previous parent.
func (r *Region) AddChild(child *Region) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = r
	r.children = append(r.children, child)
}

// RemoveChild detaches child. It is a no-op if child is not a child of r.
func (r *Region) RemoveChild(child *Region) {
	for i, c := range r.children {
		if c == child {
			r.children = append(r.children[:i], r.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent region, or nil.
func (r *Region) Parent() *Region {
	return r.parent
}

// Children returns the child regions, bottom first.
func (r *Region) Children() []*Region {
	return r.children
}

// HitTest returns the deepest region containing p. Children added later are
// on top and tested first.
func (r *Region) HitTest(p engine.Point) *Region {
	for i := len(r.children) - 1; i >= 0; i-- {
		if hit := r.children[i].HitTest(p); hit != nil {
			return hit
		}
	}
	if r.hit != nil && r.hit(p) {
		return r
	}
	return nil
}

// contains reports whether other is r or one of its descendants.
func (r *Region) contains(other *Region) bool {
	for n := other; n != nil; n = n.parent {
		if n == r {
			return true
		}
	}
	return false
}

func (r *Region) emit(e *Event) {
	e.CurrentTarget = r
	for _, fn := range r.listeners[e.Type] {
		fn(e)
	}
}

func (r *Region) walk(fn func(*Region)) {
	fn(r)
	for _, c := range r.children {
		c.walk(fn)
	}
}
