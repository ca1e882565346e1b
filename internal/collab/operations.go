package collab

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/editor"
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/gizmo"
	"github.com/inamate/transformer/internal/typeid"
)

// DocumentState holds the authoritative document and the shared gizmo for a
// room. The editor is single-threaded, so every call goes through mu.
//
// Only one client drives the gizmo at a time: the client whose press started
// a gesture owns it until the release, and other pointers are ignored.
type DocumentState struct {
	mu        sync.Mutex
	editor    *editor.Editor
	serverSeq int64
	dirty     bool

	driver    string
	lastPoint engine.Point
}

// NewDocumentState creates a room state editing doc.
func NewDocumentState(doc *document.InDocument, opts editor.Options) *DocumentState {
	ed := editor.New(opts)
	ed.SetDocument(doc)
	return &DocumentState{editor: ed}
}

// Document returns the live document. Callers must not mutate it.
func (ds *DocumentState) Document() *document.InDocument {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.editor.Document()
}

// Sync returns the serialized document and the sequence it reflects.
func (ds *DocumentState) Sync() (DocSyncPayload, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	data, err := ds.editor.DocumentJSON()
	if err != nil {
		return DocSyncPayload{}, err
	}
	return DocSyncPayload{Document: data, ServerSeq: ds.serverSeq}, nil
}

func (ds *DocumentState) ServerSeq() int64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq
}

func (ds *DocumentState) markDirty() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.dirty = true
}

// TakeDirty reports whether the document changed since the last call.
func (ds *DocumentState) TakeDirty() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	dirty := ds.dirty
	ds.dirty = false
	return dirty
}

// Scene returns the edited scene's settings.
func (ds *DocumentState) Scene() document.Scene {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.editor.Scene()
}

// Render returns the scene and overlay draw commands.
func (ds *DocumentState) Render() []engine.DrawCommand {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.editor.Render()
}

// GizmoState returns the shared gizmo's state.
func (ds *DocumentState) GizmoState() GizmoStatePayload {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.gizmoStateLocked()
}

func (ds *DocumentState) gizmoStateLocked() GizmoStatePayload {
	p := GizmoStatePayload{
		Selection: append([]string{}, ds.editor.Selection()...),
		Driver:    ds.driver,
	}
	if snap, ok := ds.editor.GizmoState(); ok {
		p.Gizmo = &snap
	}
	return p
}

// SetSelection replaces the gizmo's group and runs the deferred setup so the
// returned state is initialized. It is refused mid-drag.
func (ds *DocumentState) SetSelection(ids []string) (GizmoStatePayload, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.driver != "" {
		return GizmoStatePayload{}, ErrGizmoBusy
	}
	ds.editor.SetSelection(ids)
	ds.editor.Tick()
	return ds.gizmoStateLocked(), nil
}

// Pointer feeds one pointer event from clientID into the editor. It returns
// the operations committed by a finished gesture, the resulting gizmo state
// and the cursor hint at the pointer.
func (ds *DocumentState) Pointer(clientID, userID, typ string, p PointerPayload) ([]OperationBroadcastPayload, GizmoStatePayload, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.driver != "" && ds.driver != clientID {
		return nil, GizmoStatePayload{}, ErrGizmoBusy
	}

	var changes []editor.TransformChange
	switch typ {
	case TypePointerDown:
		ds.editor.PointerDown(p.X, p.Y)
		if g := ds.editor.Gizmo(); g != nil && g.State() != gizmo.Idle {
			ds.driver = clientID
		}
	case TypePointerMove:
		ds.editor.PointerMove(p.X, p.Y)
	case TypePointerUp:
		if p.Outside {
			changes = ds.editor.PointerUpOutside(p.X, p.Y)
		} else {
			changes = ds.editor.PointerUp(p.X, p.Y)
		}
		ds.driver = ""
	default:
		return nil, GizmoStatePayload{}, fmt.Errorf("unknown pointer event: %s", typ)
	}
	ds.lastPoint = engine.Pt(p.X, p.Y)

	ops := ds.recordLocked(userID, changes)
	state := ds.gizmoStateLocked()
	state.Cursor = ds.editor.Cursor(p.X, p.Y)
	return ops, state, nil
}

// Release ends clientID's gesture as a release outside the canvas, for a
// client that disconnected mid-drag.
func (ds *DocumentState) Release(clientID, userID string) []OperationBroadcastPayload {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.driver != clientID {
		return nil
	}
	return ds.releaseLocked(userID)
}

func (ds *DocumentState) releaseLocked(userID string) []OperationBroadcastPayload {
	if ds.driver == "" {
		return nil
	}
	ds.driver = ""
	return ds.recordLocked(userID, ds.editor.PointerUpOutside(ds.lastPoint.X, ds.lastPoint.Y))
}

// recordLocked turns committed changes into sequenced operations.
func (ds *DocumentState) recordLocked(userID string, changes []editor.TransformChange) []OperationBroadcastPayload {
	if len(changes) == 0 {
		return nil
	}
	out := make([]OperationBroadcastPayload, 0, len(changes))
	for _, c := range changes {
		next, _ := json.Marshal(c.Transform)
		prev, _ := json.Marshal(c.Previous)
		ds.serverSeq++
		out = append(out, OperationBroadcastPayload{
			Operation: Operation{
				ID:        typeid.NewOpID(),
				Type:      OpTransform,
				Timestamp: GetServerTimestamp(),
				ObjectID:  c.ObjectID,
				Transform: next,
				Previous:  prev,
			},
			UserID:    userID,
			ServerSeq: ds.serverSeq,
		})
	}
	ds.dirty = true
	return out
}

// ApplyOperation applies a submitted operation and returns the server
// sequence. Previous is filled with the replaced transform.
func (ds *DocumentState) ApplyOperation(op *Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if op.Type != OpTransform {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedOp, op.Type)
	}
	if ds.driver != "" {
		return 0, ErrGizmoBusy
	}
	doc := ds.editor.Document()
	obj, ok := doc.Objects[op.ObjectID]
	if !ok {
		return 0, fmt.Errorf("object not found: %s", op.ObjectID)
	}

	// Decoding over the current value keeps fields the op leaves out.
	next := obj.Transform
	if err := json.Unmarshal(op.Transform, &next); err != nil {
		return 0, fmt.Errorf("invalid transform: %w", err)
	}
	if err := ds.editor.ApplyTransform(op.ObjectID, next); err != nil {
		return 0, err
	}
	ds.editor.Tick()

	op.Transform, _ = json.Marshal(next)
	op.Previous, _ = json.Marshal(obj.Transform)
	ds.serverSeq++
	ds.dirty = true
	return ds.serverSeq, nil
}

// GetServerTimestamp returns the current server time in milliseconds
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
