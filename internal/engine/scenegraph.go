package engine

// Space is a coordinate space that can be resolved against the world.
// Scene nodes and the transformer itself both satisfy it.
type Space interface {
	WorldTransform() Matrix2D
	ToLocal(p Point) Point
}

// Mask is a filled rectangle expressed in its owner's local space.
// Nodes carrying a mask are clipped to it when rendered, and the mask
// follows its owner whenever the owner moves or rotates.
type Mask struct {
	Owner Space
	Rect  Rect
}

// WorldTransform returns the transform that maps mask coordinates to world space.
func (m *Mask) WorldTransform() Matrix2D {
	if m.Owner == nil {
		return Identity()
	}
	return m.Owner.WorldTransform()
}

// SceneGraph is the retained, editable scene built from a document.
type SceneGraph struct {
	Root      *Node
	NodesById map[string]*Node
}

// Node is a scene node with a mutable local transform.
// World transforms are derived on demand from the parent chain, so moving a
// parent is immediately visible to its descendants.
type Node struct {
	ID   string
	Type string // "group", "shape", "symbol", "image"

	local Matrix2D

	Opacity float64
	Visible bool

	parent   *Node
	Children []*Node

	mask *Mask

	// Render data (resolved from document)
	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64

	ImageAssetID string
	ImageWidth   float64
	ImageHeight  float64

	// Content is the axis-aligned extent of the node's own geometry in local space.
	Content Rect
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []interface{}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById: make(map[string]*Node),
	}
}

// NewNode creates a visible node with the given local transform.
func NewNode(id, typ string, local Matrix2D) *Node {
	return &Node{
		ID:      id,
		Type:    typ,
		local:   local,
		Opacity: 1,
		Visible: true,
	}
}

// AddChild appends child to n, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// RemoveChild detaches child from n. It is a no-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent's coordinate space, or nil for a detached node.
func (n *Node) Parent() Space {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// ParentNode returns the parent node, or nil.
func (n *Node) ParentNode() *Node {
	return n.parent
}

// LocalTransform returns the node's transform relative to its parent.
func (n *Node) LocalTransform() Matrix2D {
	return n.local
}

// SetLocalTransform replaces the local transform atomically.
func (n *Node) SetLocalTransform(m Matrix2D) {
	n.local = m
}

// Position returns the translation part of the local transform.
func (n *Node) Position() Point {
	return Point{X: n.local[4], Y: n.local[5]}
}

// SetPosition replaces the translation part of the local transform.
func (n *Node) SetPosition(p Point) {
	n.local[4] = p.X
	n.local[5] = p.Y
}

// WorldTransform returns parent world * local.
func (n *Node) WorldTransform() Matrix2D {
	if n.parent == nil {
		return n.local
	}
	return n.parent.WorldTransform().Multiply(n.local)
}

// ToLocal converts a world point into this node's local space.
func (n *Node) ToLocal(p Point) Point {
	return n.WorldTransform().Invert().Apply(p)
}

// ToGlobal converts a local point into world space.
func (n *Node) ToGlobal(p Point) Point {
	return n.WorldTransform().Apply(p)
}

// Bounds returns the world-space axis-aligned bounding box of the node and
// its visible descendants.
func (n *Node) Bounds() Rect {
	var bounds Rect
	if !n.Content.IsEmpty() {
		bounds = n.WorldTransform().TransformRect(n.Content)
	}
	for _, child := range n.Children {
		if !child.Visible {
			continue
		}
		bounds = bounds.Union(child.Bounds())
	}
	return bounds
}

// SetMask assigns the clip mask used when rendering the node. nil clears it.
func (n *Node) SetMask(m *Mask) {
	n.mask = m
}

// Mask returns the node's clip mask, or nil.
func (n *Node) Mask() *Mask {
	return n.mask
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
