package services

import (
	"sort"
	"sync"
)

// Connection is the live connection handle the presence registry stores.
// It is satisfied by socket.io connections and by test fakes.
type Connection interface {
	ID() string
	Emit(event string, args ...interface{})
}

// PresenceService is the process-wide online-user registry: user id to live
// connection handle. It is the single source of truth for "who is online".
// Socket handlers run on concurrent goroutines, so all access goes through
// the mutex. State is not persisted and not shared across processes.
type PresenceService struct {
	mu    sync.RWMutex
	conns map[string]Connection
}

// NewPresenceService creates an empty registry.
func NewPresenceService() *PresenceService {
	return &PresenceService{conns: make(map[string]Connection)}
}

// Set records the user's live connection. A second session for the same user
// replaces the first (last writer wins); the evicted connection is not torn
// down and its eventual disconnect is a safe no-op in RemoveByConnection.
func (p *PresenceService) Set(userID string, conn Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[userID] = conn
}

// Get returns the live connection for a user, if any.
func (p *PresenceService) Get(userID string) (Connection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.conns[userID]
	return conn, ok
}

// RemoveByConnection removes the entry whose stored handle matches the
// disconnecting connection id and returns the user id it belonged to. The
// registry is small, so a linear scan is fine. Returns ok=false when no
// entry matches, which happens when the connection was already evicted by a
// newer session.
func (p *PresenceService) RemoveByConnection(connID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for userID, conn := range p.conns {
		if conn.ID() == connID {
			delete(p.conns, userID)
			return userID, true
		}
	}
	return "", false
}

// OnlineUserIDs returns the ids of all currently connected users, sorted for
// stable output.
func (p *PresenceService) OnlineUserIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.conns))
	for userID := range p.conns {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}
