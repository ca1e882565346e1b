package engine

import (
	"encoding/json"
	"math"

	"github.com/inamate/transformer/internal/document"
)

// BuildSceneGraph builds an editable scene graph from the document's scene.
// Invisible objects are kept in the graph but skipped by rendering and bounds.
func BuildSceneGraph(doc *document.InDocument, sceneID string) *SceneGraph {
	sg := NewSceneGraph()

	scene, ok := doc.Scenes[sceneID]
	if !ok {
		return sg
	}

	rootObj, ok := doc.Objects[scene.Root]
	if !ok {
		return sg
	}

	sg.Root = buildNode(doc, &rootObj, sg, 0)
	return sg
}

// maxDepth guards against parent/child cycles in malformed documents.
const maxDepth = 64

// buildNode recursively builds a Node from a document ObjectNode.
func buildNode(doc *document.InDocument, obj *document.ObjectNode, sg *SceneGraph, depth int) *Node {
	node := NewNode(obj.ID, mapObjectType(obj.Type), FromTransform(obj.Transform))
	node.Visible = obj.Visible
	node.Opacity = obj.Style.Opacity
	node.Fill = obj.Style.Fill
	node.Stroke = obj.Style.Stroke
	node.StrokeWidth = obj.Style.StrokeWidth

	switch obj.Type {
	case document.ObjectTypeShapeRect:
		node.Path = generateRectPath(obj.Data)
		node.Content = computePathBounds(node.Path, Identity())

	case document.ObjectTypeShapeEllipse:
		node.Path = generateEllipsePath(obj.Data)
		node.Content = computePathBounds(node.Path, Identity())

	case document.ObjectTypeVectorPath:
		node.Path = extractVectorPath(obj.Data)
		node.Content = computePathBounds(node.Path, Identity())

	case document.ObjectTypeRasterImage:
		var imgData struct {
			AssetID string  `json:"assetId"`
			Width   float64 `json:"width"`
			Height  float64 `json:"height"`
		}
		if err := json.Unmarshal(obj.Data, &imgData); err == nil {
			node.ImageAssetID = imgData.AssetID
			node.ImageWidth = imgData.Width
			node.ImageHeight = imgData.Height
			node.Content = Rect{Width: imgData.Width, Height: imgData.Height}
		}
	}

	sg.NodesById[obj.ID] = node

	if depth >= maxDepth {
		return node
	}

	for _, childID := range obj.Children {
		childObj, ok := doc.Objects[childID]
		if !ok {
			continue
		}
		node.AddChild(buildNode(doc, &childObj, sg, depth+1))
	}

	return node
}

// mapObjectType converts document ObjectType to scene graph type string.
func mapObjectType(objType document.ObjectType) string {
	switch objType {
	case document.ObjectTypeGroup:
		return "group"
	case document.ObjectTypeShapeRect, document.ObjectTypeShapeEllipse, document.ObjectTypeVectorPath:
		return "shape"
	case document.ObjectTypeSymbol:
		return "symbol"
	case document.ObjectTypeRasterImage:
		return "image"
	default:
		return "unknown"
	}
}

// generateRectPath generates path commands for a rectangle.
func generateRectPath(data json.RawMessage) []PathCommand {
	var rectData struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &rectData); err != nil {
		return nil
	}

	return RectPath(Rect{Width: rectData.Width, Height: rectData.Height})
}

// generateEllipsePath generates path commands for an ellipse from object data.
func generateEllipsePath(data json.RawMessage) []PathCommand {
	var ellipseData struct {
		RX float64 `json:"rx"`
		RY float64 `json:"ry"`
	}
	if err := json.Unmarshal(data, &ellipseData); err != nil {
		return nil
	}
	return EllipsePath(ellipseData.RX, ellipseData.RY)
}

// RectPath returns a closed path tracing r.
func RectPath(r Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// EllipsePath returns bezier path commands for an ellipse centered at the origin.
func EllipsePath(rx, ry float64) []PathCommand {
	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	// Four bezier curves to approximate an ellipse
	return []PathCommand{
		{"M", rx, 0.0},
		{"C", rx, ky, kx, ry, 0.0, ry},
		{"C", -kx, ry, -rx, ky, -rx, 0.0},
		{"C", -rx, -ky, -kx, -ry, 0.0, -ry},
		{"C", kx, -ry, rx, -ky, rx, 0.0},
		{"Z"},
	}
}

// extractVectorPath extracts path commands from a VectorPath's data.
func extractVectorPath(data json.RawMessage) []PathCommand {
	var pathData struct {
		Commands [][]interface{} `json:"commands"`
	}
	if err := json.Unmarshal(data, &pathData); err != nil {
		return nil
	}

	result := make([]PathCommand, len(pathData.Commands))
	for i, cmd := range pathData.Commands {
		result[i] = PathCommand(cmd)
	}
	return result
}

// computePathBounds computes the axis-aligned bounding box of a path after
// applying m. Bezier control points are included, which over-approximates
// curves slightly.
func computePathBounds(path []PathCommand, m Matrix2D) Rect {
	var minX, minY, maxX, maxY float64
	first := true

	include := func(x, y float64) {
		wx, wy := m.TransformPoint(x, y)
		if first {
			minX, maxX = wx, wx
			minY, maxY = wy, wy
			first = false
			return
		}
		minX = math.Min(minX, wx)
		maxX = math.Max(maxX, wx)
		minY = math.Min(minY, wy)
		maxY = math.Max(maxY, wy)
	}

	for _, cmd := range path {
		op, args := cmd.Op(), cmd.Args()
		switch op {
		case "M", "L":
			if len(args) >= 2 {
				include(args[0], args[1])
			}
		case "Q":
			if len(args) >= 4 {
				include(args[0], args[1])
				include(args[2], args[3])
			}
		case "C":
			if len(args) >= 6 {
				include(args[0], args[1])
				include(args[2], args[3])
				include(args[4], args[5])
			}
		}
	}

	if first {
		return Rect{}
	}

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Op returns the command letter, or "" for a malformed command.
func (c PathCommand) Op() string {
	if len(c) == 0 {
		return ""
	}
	op, _ := c[0].(string)
	return op
}

// Args returns the numeric operands of the command.
func (c PathCommand) Args() []float64 {
	if len(c) < 2 {
		return nil
	}
	args := make([]float64, len(c)-1)
	for i, v := range c[1:] {
		args[i] = toFloat64(v)
	}
	return args
}

// toFloat64 converts an interface{} to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
