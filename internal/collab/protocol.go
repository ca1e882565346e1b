package collab

import (
	"encoding/json"
	"log/slog"

	"github.com/inamate/transformer/internal/gizmo"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// PointerPayload is a pointer event in canvas coordinates. Outside marks a
// release that happened off the canvas.
type PointerPayload struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Outside bool    `json:"outside,omitempty"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	ServerSeq int64  `json:"serverSeq"`
}

type DocSyncPayload struct {
	Document  json.RawMessage `json:"document"`
	ServerSeq int64           `json:"serverSeq"`
}

// GizmoStatePayload describes the room's shared gizmo. Gizmo is nil when
// nothing is selected. Cursor is only set on the copy sent to the client
// whose pointer produced the update.
type GizmoStatePayload struct {
	Selection []string        `json:"selection"`
	Gizmo     *gizmo.Snapshot `json:"gizmo"`
	Driver    string          `json:"driver,omitempty"`
	Cursor    string          `json:"cursor,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Gizmo input and state
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypeSelectionSet = "selection.set"
	TypeGizmoState   = "gizmo.state"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// OpTransform is the only operation type: an object's transform changed.
const OpTransform = "object.transform"

// Operation represents a document mutation. Transform may be partial on
// submit; missing fields keep their current value.
type Operation struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	ClientSeq int64           `json:"clientSeq,omitempty"`
	ObjectID  string          `json:"objectId"`
	Transform json.RawMessage `json:"transform"`
	Previous  json.RawMessage `json:"previous,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// newMessage marshals payload into a message of type typ.
func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", typ)
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}
