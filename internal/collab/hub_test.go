package collab

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/editor"
)

const testProject = "proj_test"

func newTestHub(saver DocumentSaver) *Hub {
	return NewHub(nil, saver, editor.Options{})
}

func join(t *testing.T, h *Hub, clientID string) *Client {
	t.Helper()
	c := NewClient(h, nil, "user_"+clientID, "User "+clientID, testProject, clientID)
	h.addClient(c)
	drain(t, c)
	return c
}

func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func ofType(msgs []Message, typ string) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func send(h *Hub, c *Client, typ string, payload any) {
	h.handleMessage(c, newMessage(typ, payload))
}

// rectID returns the sample's first shape, a 200x150 rect at (200, 200).
func rectID(t *testing.T, h *Hub) string {
	t.Helper()
	room, ok := h.room(testProject)
	require.True(t, ok)
	doc := room.state.Document()
	return doc.Objects[doc.Scenes[doc.Project.Scenes[0]].Root].Children[0]
}

func decodeOp(t *testing.T, m Message) (OperationBroadcastPayload, document.Transform) {
	t.Helper()
	var p OperationBroadcastPayload
	require.NoError(t, json.Unmarshal(m.Payload, &p))
	var tr document.Transform
	require.NoError(t, json.Unmarshal(p.Operation.Transform, &tr))
	return p, tr
}

func TestJoinSendsInitialState(t *testing.T) {
	h := newTestHub(nil)
	c := NewClient(h, nil, "user_a", "A", testProject, "a")
	h.addClient(c)

	msgs := drain(t, c)
	var types []string
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	assert.Equal(t, []string{TypeWelcome, TypeDocSync, TypePresenceState, TypeGizmoState}, types)

	var sync DocSyncPayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &sync))
	doc, err := document.Parse(sync.Document)
	require.NoError(t, err)
	assert.Equal(t, testProject, doc.Project.ID)

	b := join(t, h, "b")
	joins := ofType(drain(t, c), TypePresenceJoin)
	require.Len(t, joins, 1)
	assert.Equal(t, b.UserID, joins[0].UserID)
}

func TestDragBroadcastsOperations(t *testing.T) {
	h := newTestHub(nil)
	a := join(t, h, "a")
	b := join(t, h, "b")
	drain(t, a)
	id := rectID(t, h)

	send(h, a, TypeSelectionSet, SelectionPayload{IDs: []string{id}})
	for _, c := range []*Client{a, b} {
		states := ofType(drain(t, c), TypeGizmoState)
		require.Len(t, states, 1)
		var s GizmoStatePayload
		require.NoError(t, json.Unmarshal(states[0].Payload, &s))
		require.NotNil(t, s.Gizmo)
		assert.True(t, s.Gizmo.Initialized)
	}

	send(h, a, TypePointerDown, PointerPayload{X: 300, Y: 275})
	send(h, a, TypePointerMove, PointerPayload{X: 330, Y: 275})

	// Another client cannot grab the gizmo mid-drag.
	send(h, b, TypePointerDown, PointerPayload{X: 300, Y: 275})
	require.Len(t, ofType(drain(t, b), TypeError), 1)

	send(h, a, TypePointerUp, PointerPayload{X: 330, Y: 275})

	for _, c := range []*Client{a, b} {
		ops := ofType(drain(t, c), TypeOpBroadcast)
		require.Len(t, ops, 1)
		p, tr := decodeOp(t, ops[0])
		assert.Equal(t, OpTransform, p.Operation.Type)
		assert.Equal(t, id, p.Operation.ObjectID)
		assert.Equal(t, int64(1), p.ServerSeq)
		assert.Equal(t, a.UserID, p.UserID)
		assert.InDelta(t, 230, tr.X, 1e-9)
	}
}

func TestHoverOnlyReachesSender(t *testing.T) {
	h := newTestHub(nil)
	a := join(t, h, "a")
	b := join(t, h, "b")
	send(h, a, TypeSelectionSet, SelectionPayload{IDs: []string{rectID(t, h)}})
	drain(t, a)
	drain(t, b)

	send(h, a, TypePointerMove, PointerPayload{X: 400, Y: 350})

	states := ofType(drain(t, a), TypeGizmoState)
	require.Len(t, states, 1)
	var s GizmoStatePayload
	require.NoError(t, json.Unmarshal(states[0].Payload, &s))
	assert.Equal(t, "nwse-resize", s.Cursor)
	assert.Empty(t, drain(t, b))
}

func TestDisconnectMidDragReleases(t *testing.T) {
	h := newTestHub(nil)
	a := join(t, h, "a")
	b := join(t, h, "b")
	send(h, a, TypeSelectionSet, SelectionPayload{IDs: []string{rectID(t, h)}})
	send(h, a, TypePointerDown, PointerPayload{X: 300, Y: 275})
	send(h, a, TypePointerMove, PointerPayload{X: 300, Y: 300})
	drain(t, b)

	h.removeClient(a)

	msgs := drain(t, b)
	ops := ofType(msgs, TypeOpBroadcast)
	require.Len(t, ops, 1)
	_, tr := decodeOp(t, ops[0])
	assert.InDelta(t, 225, tr.Y, 1e-9)
	assert.Len(t, ofType(msgs, TypePresenceLeave), 1)

	// The gizmo is free again.
	send(h, b, TypePointerDown, PointerPayload{X: 300, Y: 300})
	assert.Empty(t, ofType(drain(t, b), TypeError))
}

func TestOpSubmit(t *testing.T) {
	h := newTestHub(nil)
	a := join(t, h, "a")
	b := join(t, h, "b")
	drain(t, a)
	id := rectID(t, h)

	tests := []struct {
		name string
		op   Operation
		ack  bool
	}{
		{"partial transform", Operation{ID: "op_1", Type: OpTransform, ObjectID: id, Transform: json.RawMessage(`{"x":250}`)}, true},
		{"unknown object", Operation{ID: "op_2", Type: OpTransform, ObjectID: "obj_missing", Transform: json.RawMessage(`{"x":1}`)}, false},
		{"unsupported type", Operation{ID: "op_3", Type: "object.delete", ObjectID: id}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(h, a, TypeOpSubmit, OperationSubmitPayload{Operation: tt.op})
			msgs := drain(t, a)
			if !tt.ack {
				require.Len(t, ofType(msgs, TypeOpNack), 1)
				assert.Empty(t, ofType(drain(t, b), TypeOpBroadcast))
				return
			}
			require.Len(t, ofType(msgs, TypeOpAck), 1)
			assert.Empty(t, ofType(msgs, TypeOpBroadcast), "sender is not echoed")

			ops := ofType(drain(t, b), TypeOpBroadcast)
			require.Len(t, ops, 1)
			p, tr := decodeOp(t, ops[0])
			assert.Equal(t, 250.0, tr.X)
			assert.Equal(t, 200.0, tr.Y)
			assert.Equal(t, 1.0, tr.SX)
			var prev document.Transform
			require.NoError(t, json.Unmarshal(p.Operation.Previous, &prev))
			assert.Equal(t, 200.0, prev.X)
		})
	}
}

func TestSelectionRefusedMidDrag(t *testing.T) {
	h := newTestHub(nil)
	a := join(t, h, "a")
	id := rectID(t, h)
	send(h, a, TypeSelectionSet, SelectionPayload{IDs: []string{id}})
	send(h, a, TypePointerDown, PointerPayload{X: 300, Y: 275})
	drain(t, a)

	send(h, a, TypeSelectionSet, SelectionPayload{IDs: nil})
	assert.Len(t, ofType(drain(t, a), TypeError), 1)

	room, _ := h.room(testProject)
	_, err := room.state.ApplyOperation(&Operation{Type: OpTransform, ObjectID: id, Transform: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrGizmoBusy)
}

func TestLastLeaveSaves(t *testing.T) {
	var saved []string
	h := newTestHub(func(projectID string, doc *document.InDocument) error {
		saved = append(saved, projectID)
		return nil
	})

	a := join(t, h, "a")
	b := join(t, h, "b")
	h.removeClient(a)
	assert.Empty(t, saved)

	h.removeClient(b)
	assert.Equal(t, []string{testProject}, saved)
	_, ok := h.room(testProject)
	assert.False(t, ok)

	// Removing twice is harmless.
	h.removeClient(b)
	assert.Len(t, saved, 1)
}

func TestStopSavesOpenRooms(t *testing.T) {
	var saved int
	h := newTestHub(func(string, *document.InDocument) error {
		saved++
		return nil
	})
	join(t, h, "a")

	h.Stop()
	assert.Equal(t, 1, saved)

	// Nothing changed since, so a second stop does not save again.
	h.Stop()
	assert.Equal(t, 1, saved)

	h.Register(NewClient(h, nil, "user_c", "C", testProject, "c"))
}

func TestLoadFailureRejectsClient(t *testing.T) {
	h := NewHub(func(string) (*document.InDocument, error) {
		return nil, errors.New("db down")
	}, nil, editor.Options{})

	c := NewClient(h, nil, "user_a", "A", testProject, "a")
	h.addClient(c)

	msgs := drain(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeError, msgs[0].Type)
	_, ok := <-c.send
	assert.False(t, ok, "send channel is closed")
	_, ok = h.room(testProject)
	assert.False(t, ok)
}

func TestUnknownPointerType(t *testing.T) {
	ds := NewDocumentState(document.NewSampleDocument(testProject), editor.Options{})
	_, _, err := ds.Pointer("a", "user_a", "pointer.cancel", PointerPayload{})
	assert.Error(t, err)
}

func TestClientDecodeStampsIdentity(t *testing.T) {
	c := NewClient(nil, nil, "user_a", "A", testProject, "a")

	msg, err := c.decode([]byte(`{"type":"pointer.move","userId":"user_evil","payload":{"x":1,"y":2}}`))
	require.NoError(t, err)
	assert.Equal(t, "user_a", msg.UserID)
	assert.Equal(t, "a", msg.ClientID)
	assert.Equal(t, testProject, msg.ProjectID)

	_, err = c.decode([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, errMissingType)
	_, err = c.decode([]byte(`nope`))
	assert.Error(t, err)
}
