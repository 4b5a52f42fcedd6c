package state

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMembership_Add_And_Snapshot(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()
	userID := uuid.NewString()

	// When the user is added to two chats
	index.Add(userID, "chat-1")
	index.Add(userID, "chat-2")

	// Then both memberships are listed in insertion order
	req.Equal([]string{"chat-1", "chat-2"}, index.Chats(userID))
}

func TestMembership_Add_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()
	userID := uuid.NewString()

	index.Add(userID, "chat-1")
	index.Add(userID, "chat-1")

	req.Equal([]string{"chat-1"}, index.Chats(userID))
}

func TestMembership_Unknown_User_Has_No_Chats(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()

	req.Empty(index.Chats(uuid.NewString()))
}

func TestMembership_Snapshot_Detached(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()
	userID := uuid.NewString()
	index.Add(userID, "chat-1")

	snapshot := index.Chats(userID)
	snapshot[0] = "tampered"

	req.Equal([]string{"chat-1"}, index.Chats(userID))
}

func TestMembership_Concurrent_Add_Same_Pair(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex()
	userID := uuid.NewString()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			index.Add(userID, "chat-1")
		}()
	}
	wg.Wait()

	// Then the pair appears exactly once
	req.Equal([]string{"chat-1"}, index.Chats(userID))
}
