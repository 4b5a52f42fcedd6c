// Package event defines the outbound events the relay pushes to clients.
// Each type carries its wire name so transports can frame it without
// knowing anything about the payload.
package event

import "relay-lab/domain"

// Event is anything the relay can push to a connection or a chat group.
type Event interface {
	EventName() string
}

// UserRef is the public projection of an online user.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OnlineUsers is the full presence snapshot, broadcast to every connection
// whenever presence changes.
type OnlineUsers []UserRef

func (OnlineUsers) EventName() string { return "onlineUsers" }

// InitialChats rehydrates a freshly registered connection with every chat
// it is a participant of.
type InitialChats []domain.Chat

func (InitialChats) EventName() string { return "initialChats" }

// ChatInvite forwards the original chat descriptor to an online participant.
type ChatInvite struct {
	domain.ChatDescriptor
}

func (ChatInvite) EventName() string { return "chatInvite" }

// ChatHistory is the current message history of one chat, sent privately
// on join.
type ChatHistory struct {
	ChatID   string           `json:"chatId"`
	Messages []domain.Message `json:"messages"`
}

func (ChatHistory) EventName() string { return "chatHistory" }

// MessageEvent relays an accepted message to a chat group.
type MessageEvent struct {
	domain.Message
}

func (MessageEvent) EventName() string { return "chatMessage" }

// MessageStatus notifies a chat group about the delivery state of a message.
type MessageStatus struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

func (MessageStatus) EventName() string { return "messageStatus" }

// Typing and StopTyping are fire-and-forget indicators, delivered to every
// group member except the sender.
type Typing struct {
	ChatID   string `json:"chatId"`
	UserName string `json:"userName"`
}

func (Typing) EventName() string { return "typing" }

type StopTyping struct {
	ChatID   string `json:"chatId"`
	UserName string `json:"userName"`
}

func (StopTyping) EventName() string { return "stopTyping" }
