// Package relay implements the protocol state machine: how connections map
// to users, how chats aggregate participants and history, and how messages
// are deduplicated and fanned out.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"relay-lab/contract"
	"relay-lab/domain"
	"relay-lab/domain/event"
	"relay-lab/moderation"
	"relay-lab/observability"
	"relay-lab/state"
)

// Ack is the result handed back to a sender's acknowledgement callback.
type Ack struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// AckFunc receives the acknowledgement for one chatMessage event. A nil
// AckFunc means the sender did not ask for one.
type AckFunc func(Ack)

const statusSent = "sent"

// Engine reacts to inbound connection events by consulting and mutating the
// live stores, then emitting outbound events to single connections or chat
// groups. Every handler absorbs referential misses silently: absent chats,
// users, or participants never propagate an error.
type Engine struct {
	log         *slog.Logger
	hub         contract.IHub
	presence    *state.PresenceRegistry
	chats       *state.ChatStore
	memberships *state.MembershipIndex
	dedup       *state.DedupCache
	metrics     *observability.Metrics
	moderator   *moderation.Moderator // nil disables moderation
}

func NewEngine(
	log *slog.Logger,
	hub contract.IHub,
	presence *state.PresenceRegistry,
	chats *state.ChatStore,
	memberships *state.MembershipIndex,
	dedup *state.DedupCache,
	metrics *observability.Metrics,
	moderator *moderation.Moderator,
) *Engine {
	return &Engine{
		log:         log,
		hub:         hub,
		presence:    presence,
		chats:       chats,
		memberships: memberships,
		dedup:       dedup,
		metrics:     metrics,
		moderator:   moderator,
	}
}

// Connected binds a freshly accepted connection's sink so it can receive
// broadcasts even before registration.
func (e *Engine) Connected(connectionID string, sink contract.EventSink) {
	e.hub.Bind(connectionID, sink)
}

// RegisterUser binds the connection to a logical user, broadcasts the new
// presence snapshot to everyone, and rehydrates the connection: its
// remembered chats are sent privately and the connection rejoins each
// chat's broadcast group. Memberships whose chat no longer resolves are
// dropped.
func (e *Engine) RegisterUser(ctx context.Context, connectionID, userID, userName string) {
	e.presence.Register(domain.User{ID: userID, Name: userName, ConnectionID: connectionID})
	e.hub.BroadcastAll(ctx, e.onlineSnapshot())

	chatIDs := e.memberships.Chats(userID)
	existing := make([]domain.Chat, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		chat, ok := e.chats.Get(chatID)
		if !ok {
			e.log.Warn("Dropping membership without a chat record",
				"user_id", userID, "chat_id", chatID)
			continue
		}
		existing = append(existing, chat)
	}

	e.hub.SendTo(ctx, connectionID, event.InitialChats(existing))
	for _, chat := range existing {
		e.hub.Join(connectionID, chat.ID)
	}
}

// CreateChat creates the chat if its ID is new and records every
// participant's membership. Whether or not the chat already existed, every
// participant other than the caller who is currently online receives an
// invite carrying the original descriptor. Offline participants are
// silently skipped.
func (e *Engine) CreateChat(ctx context.Context, callerUserID string, desc domain.ChatDescriptor) {
	_, created := e.chats.CreateIfAbsent(desc, time.Now().UTC())
	if created {
		for _, participantID := range desc.Participants {
			e.memberships.Add(participantID, desc.ID)
		}
	}

	invite := event.ChatInvite{ChatDescriptor: desc}
	for _, participantID := range desc.Participants {
		if participantID == callerUserID {
			continue
		}
		connectionID, online := e.presence.Resolve(participantID)
		if !online {
			continue
		}
		e.hub.SendTo(ctx, connectionID, invite)
		e.metrics.IncrInvites()
	}
}

// JoinChat always joins the connection to the chat's broadcast group; the
// current history is sent back only when the chat record exists.
func (e *Engine) JoinChat(ctx context.Context, connectionID, chatID, userID string) {
	e.hub.Join(connectionID, chatID)

	chat, ok := e.chats.Get(chatID)
	if !ok {
		e.log.Debug("Join for unknown chat, no history sent",
			"chat_id", chatID, "user_id", userID)
		return
	}
	e.hub.SendTo(ctx, connectionID, event.ChatHistory{ChatID: chatID, Messages: chat.Messages})
}

// PostMessage is the critical path. The dedup admission decides everything:
// a duplicate is acknowledged with reason "duplicate" and goes no further.
// An admitted message is appended to history when the chat exists (and
// relayed regardless), broadcast to the chat group, acknowledged, and
// followed by a delivery-status event to the same group. Room broadcast
// always precedes the status event for the same message.
func (e *Engine) PostMessage(ctx context.Context, msg domain.Message, ack AckFunc) {
	if !e.dedup.TryAdmit(msg.ID) {
		e.metrics.IncrDuplicates()
		if ack != nil {
			ack(Ack{Success: false, Reason: "duplicate"})
		}
		return
	}

	if e.moderator != nil {
		censored := e.moderator.Censor(msg.Text)
		if censored != msg.Text {
			e.log.Debug("Censored message",
				"message_id", msg.ID,
				"language", moderation.DetectLanguage(msg.Text))
			msg.Text = censored
		}
	}

	if !e.chats.AppendMessage(msg.ChatID, msg) {
		e.log.Debug("Relaying message for unknown chat", "chat_id", msg.ChatID)
	}

	e.hub.Broadcast(ctx, msg.ChatID, event.MessageEvent{Message: msg})
	if ack != nil {
		ack(Ack{Success: true})
	}
	e.hub.Broadcast(ctx, msg.ChatID, event.MessageStatus{MessageID: msg.ID, Status: statusSent})
	e.metrics.IncrRelayed()
}

// Typing relays the indicator to everyone in the chat group except the
// sender. No state is touched.
func (e *Engine) Typing(ctx context.Context, connectionID, chatID, userName string) {
	e.hub.BroadcastExcept(ctx, chatID, connectionID, event.Typing{ChatID: chatID, UserName: userName})
}

func (e *Engine) StopTyping(ctx context.Context, connectionID, chatID, userName string) {
	e.hub.BroadcastExcept(ctx, chatID, connectionID, event.StopTyping{ChatID: chatID, UserName: userName})
}

// Disconnect removes the connection's presence entry, if it registered one,
// and broadcasts the updated snapshot. Chat records and memberships survive
// the disconnect.
func (e *Engine) Disconnect(ctx context.Context, connectionID string) {
	_, wasRegistered := e.presence.Unregister(connectionID)
	e.hub.Release(connectionID)
	if wasRegistered {
		e.hub.BroadcastAll(ctx, e.onlineSnapshot())
	}
}

// Stats is the read-only status surface.
type Stats struct {
	ActiveConnections int `json:"activeConnections"`
	OnlineUsers       int `json:"onlineUsers"`
	TotalChats        int `json:"totalChats"`
	CachedMessages    int `json:"cachedMessages"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		ActiveConnections: e.hub.ActiveConnections(),
		OnlineUsers:       e.presence.Count(),
		TotalChats:        e.chats.Count(),
		CachedMessages:    e.dedup.Len(),
	}
}

// Metrics exposes the relay counters for the status surface.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

func (e *Engine) onlineSnapshot() event.OnlineUsers {
	return lo.Map(e.presence.ListOnline(), func(user domain.User, _ int) event.UserRef {
		return event.UserRef{ID: user.ID, Name: user.Name}
	})
}
