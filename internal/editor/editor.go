// Package editor hosts a transform gizmo over a document scene. It owns the
// document, the retained scene graph, the pointer region tree and the
// deferred ticker, and writes transforms back to the document when a drag
// ends.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/gizmo"
	"github.com/inamate/transformer/internal/pointer"
)

// Options configures the gizmos an Editor creates.
type Options struct {
	CenteredScaling    bool
	MinClipSize        float64
	RotateHandleOffset float64
	Logger             *slog.Logger
}

// TransformChange records an object whose document transform was rewritten
// by a finished drag.
type TransformChange struct {
	ObjectID  string             `json:"objectId"`
	Transform document.Transform `json:"transform"`
	Previous  document.Transform `json:"previous"`
}

// Editor is the interactive session for one document. It is not safe for
// concurrent use; hosts serialize calls.
type Editor struct {
	opts Options
	log  *slog.Logger

	doc     *document.InDocument
	sceneID string
	scene   *engine.SceneGraph

	ticker     *engine.Ticker
	stage      *pointer.Region
	dispatcher *pointer.Dispatcher

	gizmo     *gizmo.Transformer
	selection []string
	pending   []TransformChange
}

// New creates an editor with no document loaded.
func New(opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	stage := pointer.NewRegion("stage", func(engine.Point) bool { return true })
	return &Editor{
		opts:       opts,
		log:        opts.Logger,
		scene:      engine.NewSceneGraph(),
		ticker:     engine.NewTicker(),
		stage:      stage,
		dispatcher: pointer.NewDispatcher(stage),
	}
}

// --- Commands ---

// LoadDocument replaces the document with the given JSON and clears the
// selection.
func (e *Editor) LoadDocument(data []byte) error {
	doc, err := document.Parse(data)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.SetDocument(doc)
	return nil
}

// LoadSample loads the built-in sample document.
func (e *Editor) LoadSample(projectID string) {
	e.SetDocument(document.NewSampleDocument(projectID))
}

// SetDocument edits doc in place and clears the selection.
func (e *Editor) SetDocument(doc *document.InDocument) {
	e.clearGizmo()
	e.doc = doc
	e.sceneID = doc.DefaultScene()
	e.scene = engine.BuildSceneGraph(doc, e.sceneID)
	e.selection = nil
	e.pending = nil
}

// SetSelection replaces the transformed group. Unknown IDs and the scene
// root are ignored. It returns the IDs actually selected.
func (e *Editor) SetSelection(ids []string) []string {
	e.clearGizmo()
	e.selection = nil

	seen := make(map[string]bool, len(ids))
	var targets []gizmo.Target
	for _, id := range ids {
		node, ok := e.scene.NodesById[id]
		if !ok || node == e.scene.Root || seen[id] {
			continue
		}
		seen[id] = true
		e.selection = append(e.selection, id)
		targets = append(targets, node)
	}
	if len(targets) == 0 || e.scene.Root == nil {
		return e.selection
	}

	minClip := e.opts.MinClipSize
	e.gizmo = gizmo.New(gizmo.Options{
		Group:              targets,
		CenteredScaling:    e.opts.CenteredScaling,
		MinClipW:           minClip,
		MinClipH:           minClip,
		RotateHandleOffset: e.opts.RotateHandleOffset,
		Observer:           commitObserver{e},
		Logger:             e.log,
	}, e.ticker)
	e.gizmo.Attach(e.scene.Root, e.stage)

	e.log.Debug("selection set", "ids", e.selection)
	return e.selection
}

func (e *Editor) clearGizmo() {
	if e.gizmo == nil {
		return
	}
	e.gizmo.Destroy()
	e.gizmo = nil
}

// Tick advances one frame, running deferred work such as gizmo setup.
func (e *Editor) Tick() {
	e.ticker.Tick()
}

// PointerDown feeds a press at canvas coordinates (x, y).
func (e *Editor) PointerDown(x, y float64) {
	e.dispatcher.Down(engine.Pt(x, y))
}

// PointerMove feeds a pointer move.
func (e *Editor) PointerMove(x, y float64) {
	e.dispatcher.Move(engine.Pt(x, y))
}

// PointerUp feeds a release and returns the document changes committed by the
// gesture it ended, if any.
func (e *Editor) PointerUp(x, y float64) []TransformChange {
	e.dispatcher.Up(engine.Pt(x, y))
	return e.takePending()
}

// PointerUpOutside feeds a release that happened outside the canvas.
func (e *Editor) PointerUpOutside(x, y float64) []TransformChange {
	e.dispatcher.UpOutside(engine.Pt(x, y))
	return e.takePending()
}

func (e *Editor) takePending() []TransformChange {
	changes := e.pending
	e.pending = nil
	return changes
}

// ApplyTransform sets an object's transform from outside the gizmo, for
// example from a remote operation. The current selection is rebuilt so the
// gizmo fits the new geometry.
func (e *Editor) ApplyTransform(objectID string, t document.Transform) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	node, ok := e.scene.NodesById[objectID]
	if !ok || !e.doc.SetTransform(objectID, t) {
		return fmt.Errorf("%w: %s", ErrUnknownObject, objectID)
	}
	node.SetLocalTransform(engine.FromTransform(t))
	if e.gizmo != nil {
		e.SetSelection(e.selection)
	}
	return nil
}

// commitObserver writes the selection's transforms back to the document when
// a gesture ends.
type commitObserver struct{ e *Editor }

func (c commitObserver) DragEnded(kind gizmo.HandleKind) {
	c.e.commit(kind)
}

func (e *Editor) commit(kind gizmo.HandleKind) {
	for _, id := range e.selection {
		node, ok := e.scene.NodesById[id]
		if !ok {
			continue
		}
		prev := e.doc.Objects[id].Transform
		next := engine.ToTransform(node.LocalTransform(), prev.AX, prev.AY)
		if sameTransform(prev, next) {
			continue
		}
		e.doc.SetTransform(id, next)
		e.pending = append(e.pending, TransformChange{ObjectID: id, Transform: next, Previous: prev})
	}
	e.log.Debug("drag committed", "handle", kind, "changes", len(e.pending))
}

func sameTransform(a, b document.Transform) bool {
	const eps = 1e-9
	pairs := [][2]float64{
		{a.X, b.X}, {a.Y, b.Y}, {a.SX, b.SX}, {a.SY, b.SY},
		{a.R, b.R}, {a.SkewX, b.SkewX}, {a.SkewY, b.SkewY},
	}
	for _, p := range pairs {
		if math.Abs(p[0]-p[1]) > eps {
			return false
		}
	}
	return true
}

// --- Queries ---

// Document returns the live document, or nil before one is loaded.
func (e *Editor) Document() *document.InDocument {
	return e.doc
}

// DocumentJSON serializes the live document.
func (e *Editor) DocumentJSON() ([]byte, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return json.Marshal(e.doc)
}

// SceneID returns the scene being edited.
func (e *Editor) SceneID() string {
	return e.sceneID
}

// Scene returns the document's scene, or the zero Scene before load.
func (e *Editor) Scene() document.Scene {
	if e.doc == nil {
		return document.Scene{}
	}
	return e.doc.Scenes[e.sceneID]
}

// Selection returns the selected object IDs.
func (e *Editor) Selection() []string {
	return e.selection
}

// Gizmo returns the active transformer, or nil with no selection.
func (e *Editor) Gizmo() *gizmo.Transformer {
	return e.gizmo
}

// Render returns the scene draw commands followed by the gizmo overlay.
func (e *Editor) Render() []engine.DrawCommand {
	cmds := engine.CompileDrawCommands(e.scene)
	if e.gizmo != nil {
		cmds = append(cmds, e.gizmo.DrawCommands()...)
	}
	return cmds
}

// RenderJSON is Render serialized for a canvas client.
func (e *Editor) RenderJSON() (string, error) {
	return engine.DrawCommandsToJSON(e.Render())
}

// HitTest returns the topmost object at (x, y), or "".
func (e *Editor) HitTest(x, y float64) string {
	return engine.HitTest(e.scene, x, y)
}

// SelectionBounds returns the world bounding box of the selection.
func (e *Editor) SelectionBounds() engine.Rect {
	return engine.GetSelectionBounds(e.scene, e.selection)
}

// Cursor returns the cursor hint for (x, y).
func (e *Editor) Cursor(x, y float64) string {
	if e.gizmo == nil {
		return "default"
	}
	return e.gizmo.CursorAt(engine.Pt(x, y))
}

// GizmoState returns the active gizmo's snapshot and false when nothing is
// selected.
func (e *Editor) GizmoState() (gizmo.Snapshot, bool) {
	if e.gizmo == nil {
		return gizmo.Snapshot{}, false
	}
	return e.gizmo.Snapshot(), true
}
