package gizmo

// HandleKind names the role of a handle.
// Corners scale, edges crop, Rotate rotates the group about its pivot.
type HandleKind string

const (
	TopLeft      HandleKind = "tl"
	TopRight     HandleKind = "tr"
	BottomLeft   HandleKind = "bl"
	BottomRight  HandleKind = "br"
	MiddleLeft   HandleKind = "ml"
	MiddleRight  HandleKind = "mr"
	MiddleTop    HandleKind = "mt"
	MiddleBottom HandleKind = "mb"
	Rotate       HandleKind = "rot"
)

// HandleKinds lists every handle in paint order.
var HandleKinds = []HandleKind{
	TopLeft, TopRight, BottomLeft, BottomRight,
	MiddleLeft, MiddleRight, MiddleTop, MiddleBottom,
	Rotate,
}

// IsSide reports whether k is an edge (crop) handle.
func (k HandleKind) IsSide() bool {
	switch k {
	case MiddleLeft, MiddleRight, MiddleTop, MiddleBottom:
		return true
	}
	return false
}

// IsCorner reports whether k is a corner (scale) handle.
func (k HandleKind) IsCorner() bool {
	switch k {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

// Valid reports whether k is a known handle kind.
func (k HandleKind) Valid() bool {
	return k.IsSide() || k.IsCorner() || k == Rotate
}

// Cursor returns the resting cursor hint for k.
func (k HandleKind) Cursor() string {
	switch k {
	case TopLeft, BottomRight:
		return "nwse-resize"
	case TopRight, BottomLeft:
		return "nesw-resize"
	case MiddleLeft, MiddleRight:
		return "ew-resize"
	case MiddleTop, MiddleBottom:
		return "ns-resize"
	case Rotate:
		return "crosshair"
	}
	return "default"
}
