package document

import (
	"encoding/json"
	"time"

	"github.com/inamate/transformer/internal/typeid"
)

// sampleBuilder accumulates objects under a parent.
type sampleBuilder struct {
	objects map[string]ObjectNode
}

func (b *sampleBuilder) add(parent string, typ ObjectType, t Transform, st Style, data string) string {
	id := typeid.NewObjectID()
	node := ObjectNode{
		ID:        id,
		Type:      typ,
		Children:  []string{},
		Transform: t,
		Style:     st,
		Visible:   true,
		Data:      json.RawMessage(data),
	}
	if parent != "" {
		p := b.objects[parent]
		p.Children = append(p.Children, id)
		b.objects[parent] = p
		node.Parent = &parent
	}
	b.objects[id] = node
	return id
}

func at(x, y float64) Transform {
	return Transform{X: x, Y: y, SX: 1, SY: 1}
}

func filled(fill, stroke string) Style {
	return Style{Fill: fill, Stroke: stroke, StrokeWidth: 2, Opacity: 1}
}

// NewSampleDocument builds a one-scene document with a rect, an ellipse, a
// triangle and a rotated, scaled symbol whose two children are drawn in its
// local space. Root children are in that order.
func NewSampleDocument(projectID string) *InDocument {
	now := time.Now().UTC().Format(time.RFC3339)
	sceneID := typeid.NewSceneID()

	b := &sampleBuilder{objects: make(map[string]ObjectNode)}
	bare := Style{Opacity: 1}

	root := b.add("", ObjectTypeGroup, at(0, 0), bare, `{}`)
	b.add(root, ObjectTypeShapeRect, at(200, 200), filled("#e94560", "#000000"),
		`{"width": 200, "height": 150}`)
	b.add(root, ObjectTypeShapeEllipse, at(640, 360), filled("#0f3460", "#16213e"),
		`{"rx": 120, "ry": 80}`)
	b.add(root, ObjectTypeVectorPath, at(900, 200), filled("#53d769", "#2d6a4f"),
		`{"commands": [["M", 0, 150], ["L", 100, 0], ["L", 200, 150], ["Z"]]}`)

	badgeT := at(500, 450)
	badgeT.SX, badgeT.SY, badgeT.R = 1.5, 1.5, 15
	badge := b.add(root, ObjectTypeSymbol, badgeT, bare, `{}`)
	b.add(badge, ObjectTypeShapeRect, at(-30, -50), filled("#f5a623", "#c78400"),
		`{"width": 60, "height": 100}`)
	b.add(badge, ObjectTypeShapeEllipse, at(0, -70), filled("#bd10e0", "#8b0ba8"),
		`{"rx": 20, "ry": 20}`)

	return &InDocument{
		Project: Project{
			ID:        projectID,
			Name:      "Untitled",
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
			Scenes:    []string{sceneID},
			Assets:    []string{},
		},
		Scenes: map[string]Scene{
			sceneID: {
				ID:         sceneID,
				Name:       "Scene 1",
				Width:      1280,
				Height:     720,
				Background: "#1a1a2e",
				Root:       root,
			},
		},
		Objects: b.objects,
		Assets:  map[string]Asset{},
	}
}
