package engine

import (
	"encoding/json"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op           string        `json:"op"`                     // Operation: "path", "image", "save", "restore", "clip"
	ObjectID     string        `json:"objectId,omitempty"`     // For hit correlation
	Transform    []float64     `json:"transform,omitempty"`    // [a, b, c, d, e, f] affine matrix
	Path         []PathCommand `json:"path,omitempty"`         // Path data for "path" and "clip" ops
	Fill         string        `json:"fill,omitempty"`         // Fill color
	Stroke       string        `json:"stroke,omitempty"`       // Stroke color
	StrokeWidth  float64       `json:"strokeWidth,omitempty"`  // Stroke width
	Opacity      float64       `json:"opacity,omitempty"`      // Global alpha
	ImageAssetID string        `json:"imageAssetId,omitempty"` // Asset ID for image lookup
	ImageWidth   float64       `json:"imageWidth,omitempty"`   // Image natural width
	ImageHeight  float64       `json:"imageHeight,omitempty"`  // Image natural height
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil || sg.Root == nil {
		return nil
	}

	var commands []DrawCommand
	compileNode(sg.Root, 1.0, &commands)
	return commands
}

// compileNode recursively generates draw commands for a node and its children.
func compileNode(node *Node, parentOpacity float64, commands *[]DrawCommand) {
	if node == nil || !node.Visible {
		return
	}

	world := node.WorldTransform()
	opacity := parentOpacity * node.Opacity

	mask := node.Mask()
	if mask != nil {
		*commands = append(*commands,
			DrawCommand{Op: "save"},
			DrawCommand{
				Op:        "clip",
				ObjectID:  node.ID,
				Transform: mask.WorldTransform().ToSlice(),
				Path:      RectPath(mask.Rect),
			},
		)
	}

	if node.Type == "image" && node.ImageAssetID != "" {
		*commands = append(*commands, DrawCommand{
			Op:           "image",
			ObjectID:     node.ID,
			Transform:    world.ToSlice(),
			Opacity:      opacity,
			ImageAssetID: node.ImageAssetID,
			ImageWidth:   node.ImageWidth,
			ImageHeight:  node.ImageHeight,
		})
	} else if len(node.Path) > 0 {
		*commands = append(*commands, DrawCommand{
			Op:          "path",
			ObjectID:    node.ID,
			Transform:   world.ToSlice(),
			Path:        node.Path,
			Opacity:     opacity,
			Fill:        node.Fill,
			Stroke:      node.Stroke,
			StrokeWidth: node.StrokeWidth,
		})
	}

	for _, child := range node.Children {
		compileNode(child, opacity, commands)
	}

	if mask != nil {
		*commands = append(*commands, DrawCommand{Op: "restore"})
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the ID of the topmost visible object whose bounds contain
// the point, or "" if nothing is hit. The scene root itself is never returned.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil || sg.Root == nil {
		return ""
	}
	for i := len(sg.Root.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(sg.Root.Children[i], x, y); hit != "" {
			return hit
		}
	}
	return ""
}

// hitTestNode tests children first since they paint on top.
func hitTestNode(node *Node, x, y float64) string {
	if node == nil || !node.Visible {
		return ""
	}

	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], x, y); hit != "" {
			return hit
		}
	}

	if len(node.Path) > 0 || node.Type == "image" {
		if node.Bounds().Contains(x, y) {
			return node.ID
		}
	}

	return ""
}

// GetSelectionBounds returns the combined world bounding box of the given object IDs.
func GetSelectionBounds(sg *SceneGraph, objectIDs []string) Rect {
	if sg == nil || len(objectIDs) == 0 {
		return Rect{}
	}

	var result Rect
	for _, id := range objectIDs {
		node, ok := sg.NodesById[id]
		if !ok {
			continue
		}
		result = result.Union(node.Bounds())
	}

	return result
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
