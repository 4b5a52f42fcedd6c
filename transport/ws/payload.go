package ws

import (
	"encoding/json"
	"time"

	"relay-lab/domain"
)

// Frame is the envelope of every inbound client message. AckID, when set,
// asks the relay to acknowledge this exact frame.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	AckID *int            `json:"ackId,omitempty"`
}

// outFrame is the envelope of everything pushed to a client.
type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	AckID *int   `json:"ackId,omitempty"`
}

// Inbound event names.
const (
	eventRegisterUser = "registerUser"
	eventCreateChat   = "createChat"
	eventJoinChat     = "joinChat"
	eventChatMessage  = "chatMessage"
	eventTyping       = "typing"
	eventStopTyping   = "stopTyping"
	eventAck          = "ack"
)

type RegisterUserPayload struct {
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName" validate:"required"`
}

type JoinChatPayload struct {
	ChatID string `json:"chatId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type ChatMessagePayload struct {
	ID        string `json:"id" validate:"required"`
	ChatID    string `json:"chatId" validate:"required"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func (p ChatMessagePayload) toDomain() domain.Message {
	return domain.Message{
		ID:       p.ID,
		ChatID:   p.ChatID,
		SenderID: p.SenderID,
		Text:     p.Text,
		At:       time.UnixMilli(p.Timestamp).UTC(),
	}
}

type TypingPayload struct {
	ChatID   string `json:"chatId" validate:"required"`
	UserName string `json:"userName"`
}
