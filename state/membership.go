package state

import (
	"sync"

	"github.com/samber/lo"
)

// MembershipIndex remembers which chats a user belongs to, so a reconnecting
// user can be rehydrated. The mapping is append-only: no operation removes a
// user from a chat.
type MembershipIndex struct {
	mu    sync.RWMutex
	chats map[string][]string // userID -> chat IDs, insertion order
}

func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{chats: make(map[string][]string)}
}

// Add records that userID belongs to chatID. Adding an already-present pair
// is a no-op.
func (m *MembershipIndex) Add(userID, chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lo.Contains(m.chats[userID], chatID) {
		return
	}
	m.chats[userID] = append(m.chats[userID], chatID)
}

// Chats returns a snapshot of the user's chat IDs in insertion order.
func (m *MembershipIndex) Chats(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.chats[userID]...)
}
