package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/document"
)

func TestBuildSampleScene(t *testing.T) {
	doc := document.NewSampleDocument("proj_test")
	sceneID := doc.DefaultScene()

	sg := BuildSceneGraph(doc, sceneID)
	require.NotNil(t, sg.Root)
	assert.Equal(t, doc.Scenes[sceneID].Root, sg.Root.ID)
	assert.Len(t, sg.NodesById, len(doc.Objects))
	assert.Len(t, sg.Root.Children, 4)

	rect := sg.Root.Children[0]
	assert.Equal(t, "shape", rect.Type)
	assert.Equal(t, Rect{Width: 200, Height: 150}, rect.Content)
	assert.Equal(t, Rect{X: 200, Y: 200, Width: 200, Height: 150}, rect.Bounds())

	ellipse := sg.Root.Children[1]
	assert.InDelta(t, -120, ellipse.Content.X, 1e-9)
	assert.InDelta(t, 240, ellipse.Content.Width, 1e-9)

	badge := sg.Root.Children[3]
	assert.Equal(t, "symbol", badge.Type)
	assert.Len(t, badge.Children, 2)
	assert.Equal(t, badge, badge.Children[0].ParentNode())
}

func TestBuildMissingScene(t *testing.T) {
	sg := BuildSceneGraph(document.NewSampleDocument("proj_test"), "scene_missing")
	assert.Nil(t, sg.Root)
	assert.Empty(t, sg.NodesById)
}

func TestCompileDrawCommandsWrapsMaskedNodes(t *testing.T) {
	root := NewNode("root", "group", Identity())
	a := NewNode("a", "shape", Translate(10, 0))
	a.Path = RectPath(Rect{Width: 5, Height: 5})
	a.Opacity = 0.5
	root.AddChild(a)

	owner := NewNode("owner", "group", Translate(1, 2))
	a.SetMask(&Mask{Owner: owner, Rect: Rect{Width: 3, Height: 3}})

	cmds := CompileDrawCommands(&SceneGraph{Root: root})
	require.Len(t, cmds, 4)

	ops := []string{cmds[0].Op, cmds[1].Op, cmds[2].Op, cmds[3].Op}
	assert.Equal(t, []string{"save", "clip", "path", "restore"}, ops)
	assert.Equal(t, Translate(1, 2).ToSlice(), cmds[1].Transform)
	assert.Equal(t, RectPath(Rect{Width: 3, Height: 3}), cmds[1].Path)
	assert.Equal(t, 0.5, cmds[2].Opacity)
	assert.Equal(t, Translate(10, 0).ToSlice(), cmds[2].Transform)
}

func TestHitTest(t *testing.T) {
	root := NewNode("root", "group", Identity())
	root.Content = Rect{Width: 1000, Height: 1000}
	below := NewNode("below", "shape", Identity())
	below.Path = RectPath(Rect{Width: 100, Height: 100})
	below.Content = Rect{Width: 100, Height: 100}
	above := NewNode("above", "shape", Translate(50, 50))
	above.Path = RectPath(Rect{Width: 100, Height: 100})
	above.Content = Rect{Width: 100, Height: 100}
	root.AddChild(below)
	root.AddChild(above)
	sg := &SceneGraph{Root: root}

	assert.Equal(t, "above", HitTest(sg, 75, 75))
	assert.Equal(t, "below", HitTest(sg, 10, 10))
	assert.Equal(t, "", HitTest(sg, 500, 500))
	assert.Equal(t, Rect{Width: 150, Height: 150}, GetSelectionBounds(&SceneGraph{
		Root:      root,
		NodesById: map[string]*Node{"below": below, "above": above},
	}, []string{"below", "above", "missing"}))
}
