package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relay-lab/domain/event"
)

// recordingSink captures every event it consumes.
type recordingSink struct {
	events []event.Event
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.events = append(s.events, e)
	return nil
}

func TestHub_Broadcast_Reaches_Group_Members(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	conn1, conn2 := uuid.NewString(), uuid.NewString()
	sink1, sink2 := &recordingSink{}, &recordingSink{}

	// Given two connections joined to the same chat
	hub.Bind(conn1, sink1)
	hub.Bind(conn2, sink2)
	hub.Join(conn1, "chat-1")
	hub.Join(conn2, "chat-1")

	// When an event is broadcast to the chat
	hub.Broadcast(ctx, "chat-1", event.MessageStatus{MessageID: "m1", Status: "sent"})

	// Then both members received it
	req.Len(sink1.events, 1)
	req.Len(sink2.events, 1)
}

func TestHub_Broadcast_Skips_Other_Groups(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	member, outsider := uuid.NewString(), uuid.NewString()
	memberSink, outsiderSink := &recordingSink{}, &recordingSink{}

	hub.Bind(member, memberSink)
	hub.Bind(outsider, outsiderSink)
	hub.Join(member, "chat-1")
	hub.Join(outsider, "chat-2")

	hub.Broadcast(ctx, "chat-1", event.MessageStatus{MessageID: "m1", Status: "sent"})

	req.Len(memberSink.events, 1)
	req.Empty(outsiderSink.events)
}

func TestHub_BroadcastExcept_Excludes_One_Connection(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	sender, other := uuid.NewString(), uuid.NewString()
	senderSink, otherSink := &recordingSink{}, &recordingSink{}

	hub.Bind(sender, senderSink)
	hub.Bind(other, otherSink)
	hub.Join(sender, "chat-1")
	hub.Join(other, "chat-1")

	// When broadcasting with the sender excluded
	hub.BroadcastExcept(ctx, "chat-1", sender, event.Typing{ChatID: "chat-1", UserName: "Alice"})

	// Then only the other member received it
	req.Empty(senderSink.events)
	req.Len(otherSink.events, 1)
}

func TestHub_BroadcastAll_Reaches_Unjoined_Connections(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	conn := uuid.NewString()
	sink := &recordingSink{}

	// Given a bound connection that joined no group
	hub.Bind(conn, sink)

	hub.BroadcastAll(ctx, event.OnlineUsers{})

	req.Len(sink.events, 1)
}

func TestHub_SendTo_Unknown_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	hub.SendTo(context.Background(), uuid.NewString(), event.OnlineUsers{})

	req.Equal(0, hub.ActiveConnections())
}

func TestHub_Release_Removes_From_All_Groups(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	leaving, staying := uuid.NewString(), uuid.NewString()
	leavingSink, stayingSink := &recordingSink{}, &recordingSink{}

	hub.Bind(leaving, leavingSink)
	hub.Bind(staying, stayingSink)
	hub.Join(leaving, "chat-1")
	hub.Join(leaving, "chat-2")
	hub.Join(staying, "chat-1")

	// When the connection is released
	hub.Release(leaving)
	hub.Broadcast(ctx, "chat-1", event.MessageStatus{MessageID: "m1", Status: "sent"})
	hub.Broadcast(ctx, "chat-2", event.MessageStatus{MessageID: "m2", Status: "sent"})

	// Then it receives nothing and no empty group lingers
	req.Empty(leavingSink.events)
	req.Len(stayingSink.events, 1)
	req.Equal(1, hub.ActiveConnections())

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	req.NotContains(hub.groupMembers, "chat-2")
	req.NotContains(hub.connGroups, leaving)
}

func TestHub_Join_Twice_Delivers_Once(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	ctx := context.Background()
	conn := uuid.NewString()
	sink := &recordingSink{}

	hub.Bind(conn, sink)
	hub.Join(conn, "chat-1")
	hub.Join(conn, "chat-1")

	hub.Broadcast(ctx, "chat-1", event.MessageStatus{MessageID: "m1", Status: "sent"})

	req.Len(sink.events, 1)
}
