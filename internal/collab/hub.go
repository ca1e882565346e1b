// Package collab hosts shared gizmo sessions over websockets. Each project
// has a room whose clients see one document and one gizmo: pointer input from
// the driving client moves it, and committed transforms are broadcast as
// operations.
package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/editor"
)

// DocumentLoader returns a project's saved document, or nil when the project
// has none yet.
type DocumentLoader func(projectID string) (*document.InDocument, error)

// DocumentSaver persists a project's document.
type DocumentSaver func(projectID string, doc *document.InDocument) error

type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState
}

func NewRoom(projectID string, state *DocumentState) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	loader DocumentLoader
	saver  DocumentSaver
	opts   editor.Options
}

// NewHub creates a hub. A nil loader or saver keeps documents in memory only.
func NewHub(loader DocumentLoader, saver DocumentSaver, opts editor.Options) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		loader:     loader,
		saver:      saver,
		opts:       opts,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			return
		}
	}
}

// Stop ends Run and saves every open room.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

// DocumentState returns the live state of an open room, or a detached state
// loaded from storage when nobody is connected.
func (h *Hub) DocumentState(projectID string) (*DocumentState, error) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	h.mu.RUnlock()
	if ok {
		return room.state, nil
	}
	doc, _, err := h.load(projectID)
	if err != nil {
		return nil, err
	}
	return NewDocumentState(doc, h.opts), nil
}

func (h *Hub) load(projectID string) (*document.InDocument, bool, error) {
	if h.loader != nil {
		doc, err := h.loader(projectID)
		if err != nil {
			return nil, false, fmt.Errorf("load document %s: %w", projectID, err)
		}
		if doc != nil {
			return doc, false, nil
		}
	}
	return document.NewSampleDocument(projectID), true, nil
}

// openRoom returns the project's room, loading its document on first use.
// Caller holds h.mu.
func (h *Hub) openRoom(projectID string) (*Room, error) {
	if room, ok := h.rooms[projectID]; ok {
		return room, nil
	}
	doc, seeded, err := h.load(projectID)
	if err != nil {
		return nil, err
	}
	state := NewDocumentState(doc, h.opts)
	if seeded {
		state.markDirty()
	}
	room := NewRoom(projectID, state)
	h.rooms[projectID] = room
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, err := h.openRoom(client.ProjectID)
	if err != nil {
		h.mu.Unlock()
		slog.Error("open room", "error", err, "project", client.ProjectID)
		sendError(client, "could not load document")
		client.closeSend()
		return
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		ServerSeq: room.state.ServerSeq(),
	}))
	if snap, err := room.state.Sync(); err != nil {
		slog.Error("sync document", "error", err, "project", client.ProjectID)
	} else {
		client.Send(newMessage(TypeDocSync, snap))
	}
	client.Send(room.presence.StateMessage())
	client.Send(newMessage(TypeGizmoState, room.state.GizmoState()))

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	// A client that vanished mid-drag releases outside the canvas.
	if ops := room.state.Release(client.ClientID, client.UserID); len(ops) > 0 {
		h.broadcastOps(room.projectID, ops, "")
		h.broadcastToRoom(room.projectID, newMessage(TypeGizmoState, room.state.GizmoState()), "")
	}

	if empty {
		h.saveRoom(room)
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

// saveRoom writes a copy of the room's document if it changed.
func (h *Hub) saveRoom(room *Room) {
	if h.saver == nil || !room.state.TakeDirty() {
		return
	}
	snap, err := room.state.Sync()
	if err != nil {
		slog.Error("encode document", "error", err, "project", room.projectID)
		return
	}
	doc, err := document.Parse(snap.Document)
	if err != nil {
		slog.Error("copy document", "error", err, "project", room.projectID)
		return
	}
	if err := h.saver(room.projectID, doc); err != nil {
		room.state.markDirty()
		slog.Error("save document", "error", err, "project", room.projectID)
		return
	}
	slog.Info("document saved", "project", room.projectID, "seq", snap.ServerSeq)
}

func (h *Hub) room(projectID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[projectID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypePointerDown, TypePointerMove, TypePointerUp:
		h.handlePointer(sender, msg)
	case TypeSelectionSet:
		h.handleSelection(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sendError(sender, "unknown message type: "+msg.Type)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.ProjectID, outMsg, sender.ClientID)
}

func (h *Hub) handlePointer(sender *Client, msg *Message) {
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		slog.Warn("invalid pointer payload", "error", err, "user", sender.UserID)
		return
	}

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}
	room.presence.MoveCursor(sender.UserID, sender.DisplayName, p.X, p.Y)

	ops, state, err := room.state.Pointer(sender.ClientID, sender.UserID, msg.Type, p)
	if err != nil {
		// Moves from a non-driving client are expected while someone drags.
		if errors.Is(err, ErrGizmoBusy) && msg.Type == TypePointerMove {
			return
		}
		sendError(sender, err.Error())
		return
	}

	h.broadcastOps(sender.ProjectID, ops, "")

	sender.Send(newMessage(TypeGizmoState, state))
	if msg.Type == TypePointerMove && state.Driver == "" {
		// Hover only changes the sender's cursor.
		return
	}
	state.Cursor = ""
	h.broadcastToRoom(sender.ProjectID, newMessage(TypeGizmoState, state), sender.ClientID)
}

func (h *Hub) handleSelection(sender *Client, msg *Message) {
	var sel SelectionPayload
	if err := json.Unmarshal(msg.Payload, &sel); err != nil {
		slog.Warn("invalid selection payload", "error", err, "user", sender.UserID)
		return
	}

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	state, err := room.state.SetSelection(sel.IDs)
	if err != nil {
		sendError(sender, err.Error())
		return
	}
	room.presence.Select(sender.UserID, sender.DisplayName, state.Selection)
	h.broadcastToRoom(sender.ProjectID, newMessage(TypeGizmoState, state), "")
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var payload OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		return
	}

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	op := payload.Operation
	seq, err := room.state.ApplyOperation(&op)
	if err != nil {
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	sender.Send(newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
	}))
	h.broadcastOps(sender.ProjectID, []OperationBroadcastPayload{{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	}}, sender.ClientID)
	h.broadcastToRoom(sender.ProjectID, newMessage(TypeGizmoState, room.state.GizmoState()), "")
}

func (h *Hub) broadcastOps(projectID string, ops []OperationBroadcastPayload, excludeClientID string) {
	for _, op := range ops {
		msg := newMessage(TypeOpBroadcast, op)
		msg.UserID = op.UserID
		msg.Seq = op.ServerSeq
		h.broadcastToRoom(projectID, msg, excludeClientID)
	}
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func sendError(c *Client, message string) {
	c.Send(newMessage(TypeError, ErrorPayload{Message: message}))
}
