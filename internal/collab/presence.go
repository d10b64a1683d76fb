package collab

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"
)

// PresenceManager holds the last cursor, selection and marquee each
// connection reported for a board. Entries are keyed by client id so one
// user with two tabs open shows two cursors.
type PresenceManager struct {
	mu      sync.RWMutex
	entries map[string]*PresencePayload
	now     func() time.Time
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		entries: make(map[string]*PresencePayload),
		now:     time.Now,
	}
}

// Update stores p for clientID and stamps it.
func (pm *PresenceManager) Update(clientID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p.UpdatedAt = pm.now().UTC()
	pm.entries[clientID] = p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.entries, clientID)
}

// Expire drops entries not updated within maxAge and returns their client ids.
func (pm *PresenceManager) Expire(maxAge time.Duration) []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	cutoff := pm.now().Add(-maxAge)
	var gone []string
	for id, p := range pm.entries {
		if p.UpdatedAt.Before(cutoff) {
			delete(pm.entries, id)
			gone = append(gone, id)
		}
	}
	return gone
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.entries)
}

// StateMessage is the presence.state message sent to a joining client.
func (pm *PresenceManager) StateMessage() (*Message, error) {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		return nil, fmt.Errorf("marshal presence state: %w", err)
	}
	return &Message{Type: TypePresenceState, Payload: payload}, nil
}
