// Package runtime wires live connections to the relay: it owns the
// connection/group registry used as the broadcast primitive and the
// supervised background workers.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"relay-lab/contract"
	"relay-lab/domain/event"
)

type Set map[string]struct{}

// Hub maps connections to their outbound sinks and chat groups to their
// member connections. It is the fan-out target for every room event.
type Hub struct {
	mu           sync.RWMutex
	log          *slog.Logger
	sinks        map[string]contract.EventSink // connectionID -> sink
	groupMembers map[string]Set                // chatID -> connectionIDs
	connGroups   map[string]Set                // connectionID -> chatIDs
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:          log,
		sinks:        make(map[string]contract.EventSink),
		groupMembers: make(map[string]Set),
		connGroups:   make(map[string]Set),
	}
}

// Bind registers a connection's outbound sink. A connection must be bound
// before it can join groups or receive events.
func (h *Hub) Bind(connectionID string, sink contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[connectionID] = sink
}

// Release removes the connection from every group it joined and drops its
// sink. No empty group sets are left behind.
func (h *Hub) Release(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sinks, connectionID)
	for chatID := range h.connGroups[connectionID] {
		members := h.groupMembers[chatID]
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.groupMembers, chatID)
		}
	}
	delete(h.connGroups, connectionID)
}

// Join adds the connection to a chat's broadcast group. Groups are
// initialized on the fly; joining twice is harmless.
func (h *Hub) Join(connectionID, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groupMembers[chatID]; !ok {
		h.groupMembers[chatID] = make(Set)
	}
	h.groupMembers[chatID][connectionID] = struct{}{}

	if _, ok := h.connGroups[connectionID]; !ok {
		h.connGroups[connectionID] = make(Set)
	}
	h.connGroups[connectionID][chatID] = struct{}{}
}

// SendTo delivers an event to a single connection, if it is still bound.
func (h *Hub) SendTo(ctx context.Context, connectionID string, e event.Event) {
	h.mu.RLock()
	sink, ok := h.sinks[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.consume(ctx, connectionID, sink, e)
}

// Broadcast fans an event out to every connection in the chat's group.
func (h *Hub) Broadcast(ctx context.Context, chatID string, e event.Event) {
	h.BroadcastExcept(ctx, chatID, "", e)
}

// BroadcastExcept fans out to the chat's group, skipping one connection.
// Sinks are resolved under the read lock but consumed outside of it so a
// slow sink never stalls registry mutations.
func (h *Hub) BroadcastExcept(ctx context.Context, chatID, exceptConnectionID string, e event.Event) {
	type target struct {
		connectionID string
		sink         contract.EventSink
	}

	h.mu.RLock()
	members := h.groupMembers[chatID]
	targets := make([]target, 0, len(members))
	for connectionID := range members {
		if connectionID == exceptConnectionID {
			continue
		}
		if sink, ok := h.sinks[connectionID]; ok {
			targets = append(targets, target{connectionID: connectionID, sink: sink})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		h.consume(ctx, t.connectionID, t.sink, e)
	}
}

// BroadcastAll delivers an event to every bound connection, joined to a
// group or not. Used for presence snapshots.
func (h *Hub) BroadcastAll(ctx context.Context, e event.Event) {
	h.mu.RLock()
	type target struct {
		connectionID string
		sink         contract.EventSink
	}
	targets := make([]target, 0, len(h.sinks))
	for connectionID, sink := range h.sinks {
		targets = append(targets, target{connectionID: connectionID, sink: sink})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		h.consume(ctx, t.connectionID, t.sink, e)
	}
}

func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

func (h *Hub) consume(ctx context.Context, connectionID string, sink contract.EventSink, e event.Event) {
	if err := sink.Consume(ctx, e); err != nil {
		h.log.Debug("Dropping event for connection",
			"connection_id", connectionID,
			"event", e.EventName(),
			"error", err)
	}
}
