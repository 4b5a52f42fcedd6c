package state

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-lab/domain"
)

func TestPresence_Register_One_User(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	user := domain.User{ID: uuid.NewString(), Name: "Alice", ConnectionID: uuid.NewString()}

	// When a user registers
	registry.Register(user)

	// Then the user is online and resolvable
	req.Equal([]domain.User{user}, registry.ListOnline())
	conn, ok := registry.Resolve(user.ID)
	req.True(ok)
	req.Equal(user.ConnectionID, conn)
	req.Equal(1, registry.Count())
}

func TestPresence_Register_Twice_Last_Writer_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	userID := uuid.NewString()
	firstConn := uuid.NewString()
	secondConn := uuid.NewString()

	// Given a user registered from a first connection
	registry.Register(domain.User{ID: userID, Name: "Alice", ConnectionID: firstConn})

	// When the same user registers again from a second connection
	registry.Register(domain.User{ID: userID, Name: "Alice", ConnectionID: secondConn})

	// Then exactly one entry remains, bound to the second connection
	req.Equal(1, registry.Count())
	conn, ok := registry.Resolve(userID)
	req.True(ok)
	req.Equal(secondConn, conn)
}

func TestPresence_Unregister_Stale_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	userID := uuid.NewString()
	firstConn := uuid.NewString()
	secondConn := uuid.NewString()

	// Given a user who reconnected under a new connection
	registry.Register(domain.User{ID: userID, Name: "Alice", ConnectionID: firstConn})
	registry.Register(domain.User{ID: userID, Name: "Alice", ConnectionID: secondConn})

	// When the stale connection finally disconnects
	_, removed := registry.Unregister(firstConn)

	// Then nothing happens to the fresh entry
	req.False(removed)
	req.Equal(1, registry.Count())
}

func TestPresence_Unregister_Removes_Entry(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	user := domain.User{ID: uuid.NewString(), Name: "Bob", ConnectionID: uuid.NewString()}
	registry.Register(user)

	// When the connection disconnects
	removed, ok := registry.Unregister(user.ConnectionID)

	// Then the user is gone
	req.True(ok)
	req.Equal(user, removed)
	req.Empty(registry.ListOnline())
	_, ok = registry.Resolve(user.ID)
	req.False(ok)
}

func TestPresence_Unregister_Unknown_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()

	_, ok := registry.Unregister(uuid.NewString())

	req.False(ok)
}

func TestPresence_Concurrent_Register_Same_User(t *testing.T) {
	req := require.New(t)
	registry := NewPresenceRegistry()
	userID := uuid.NewString()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Register(domain.User{ID: userID, Name: "Alice", ConnectionID: uuid.NewString()})
			registry.ListOnline()
		}()
	}
	wg.Wait()

	// Then exactly one entry survives, bound to some winning connection
	req.Equal(1, registry.Count())
	conn, ok := registry.Resolve(userID)
	req.True(ok)
	req.NotEmpty(conn)
}
