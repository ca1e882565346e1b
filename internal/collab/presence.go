package collab

import "sync"

// PresenceManager tracks what each user in a room is pointing at and has
// selected.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

// MoveCursor records a pointer position without touching the selection.
func (pm *PresenceManager) MoveCursor(userID, displayName string, x, y float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p := pm.entryLocked(userID, displayName)
	p.Cursor = &CursorPos{X: x, Y: y}
}

// Select records the user's selection.
func (pm *PresenceManager) Select(userID, displayName string, ids []string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p := pm.entryLocked(userID, displayName)
	p.Selection = ids
}

// entryLocked replaces rather than mutates, since GetAll hands out the stored
// pointers.
func (pm *PresenceManager) entryLocked(userID, displayName string) *PresencePayload {
	next := &PresencePayload{DisplayName: displayName}
	if cur, ok := pm.presences[userID]; ok {
		*next = *cur
	}
	pm.presences[userID] = next
	return next
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
