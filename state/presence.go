// Package state holds the relay's live, memory-resident stores. Every store
// serializes mutations per key and exposes snapshot reads; none of them
// persists anything across restarts.
package state

import (
	"sync"

	"relay-lab/domain"
)

// PresenceRegistry maps logical users to their current connection. It owns
// the live set exclusively: at most one entry per user ID, last writer wins.
type PresenceRegistry struct {
	mu     sync.RWMutex
	users  map[string]domain.User // userID -> live entry
	byConn map[string]string      // connectionID -> userID
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		users:  make(map[string]domain.User),
		byConn: make(map[string]string),
	}
}

// Register inserts or overwrites the entry for user.ID. A re-registration
// from a new connection drops the stale connection binding so a late
// disconnect of the old connection cannot evict the fresh entry.
func (r *PresenceRegistry) Register(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.users[user.ID]; ok && previous.ConnectionID != user.ConnectionID {
		delete(r.byConn, previous.ConnectionID)
	}
	r.users[user.ID] = user
	r.byConn[user.ConnectionID] = user.ID
}

// Unregister removes the single entry bound to connectionID, if any.
// Disconnects of unregistered or already-superseded connections are no-ops.
func (r *PresenceRegistry) Unregister(connectionID string) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connectionID]
	if !ok {
		return domain.User{}, false
	}
	user := r.users[userID]
	delete(r.users, userID)
	delete(r.byConn, connectionID)
	return user, true
}

// ListOnline returns a snapshot of everyone currently registered.
// Order is unspecified.
func (r *PresenceRegistry) ListOnline() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out
}

// Resolve returns the connection currently bound to userID.
func (r *PresenceRegistry) Resolve(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return "", false
	}
	return user.ConnectionID, true
}

func (r *PresenceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
