package document

import (
	"encoding/json"
	"fmt"
)

type InDocument struct {
	Project Project               `json:"project"`
	Scenes  map[string]Scene      `json:"scenes"`
	Objects map[string]ObjectNode `json:"objects"`
	Assets  map[string]Asset      `json:"assets"`
}

type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Scenes    []string `json:"scenes"`
	Assets    []string `json:"assets"`
}

type Scene struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Root       string `json:"root"`
}

type ObjectType string

const (
	ObjectTypeGroup        ObjectType = "Group"
	ObjectTypeShapeRect    ObjectType = "ShapeRect"
	ObjectTypeShapeEllipse ObjectType = "ShapeEllipse"
	ObjectTypeVectorPath   ObjectType = "VectorPath"
	ObjectTypeRasterImage  ObjectType = "RasterImage"
	ObjectTypeSymbol       ObjectType = "Symbol"
)

// Transform is the decomposed local transform of an object.
// R, SkewX and SkewY are in degrees; (AX, AY) is the rotation/scale anchor.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	SX    float64 `json:"sx"`
	SY    float64 `json:"sy"`
	R     float64 `json:"r"`
	AX    float64 `json:"ax"`
	AY    float64 `json:"ay"`
	SkewX float64 `json:"skewX,omitempty"`
	SkewY float64 `json:"skewY,omitempty"`
}

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

type ObjectNode struct {
	ID        string          `json:"id"`
	Type      ObjectType      `json:"type"`
	Parent    *string         `json:"parent"`
	Children  []string        `json:"children"`
	Transform Transform       `json:"transform"`
	Style     Style           `json:"style"`
	Visible   bool            `json:"visible"`
	Locked    bool            `json:"locked"`
	Data      json.RawMessage `json:"data"`
}

type Asset struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Name string          `json:"name"`
	URL  string          `json:"url"`
	Meta json.RawMessage `json:"meta"`
}

// Parse decodes a document and checks that its first scene has a root object.
func Parse(data []byte) (*InDocument, error) {
	var doc InDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	sceneID := doc.DefaultScene()
	if sceneID == "" {
		return nil, fmt.Errorf("document has no scenes")
	}
	scene, ok := doc.Scenes[sceneID]
	if !ok {
		return nil, fmt.Errorf("scene not found: %s", sceneID)
	}
	if _, ok := doc.Objects[scene.Root]; !ok {
		return nil, fmt.Errorf("scene %s root not found: %s", sceneID, scene.Root)
	}
	return &doc, nil
}

// DefaultScene returns the first scene ID, or "".
func (d *InDocument) DefaultScene() string {
	if len(d.Project.Scenes) == 0 {
		return ""
	}
	return d.Project.Scenes[0]
}

// SetTransform replaces an object's transform. It reports false if the object
// does not exist.
func (d *InDocument) SetTransform(objectID string, t Transform) bool {
	obj, ok := d.Objects[objectID]
	if !ok {
		return false
	}
	obj.Transform = t
	d.Objects[objectID] = obj
	return true
}
