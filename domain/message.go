// Package domain contains core concepts of the relay system.
// This file defines Message events and related rules.
// Messages are immutable once accepted by the relay.
package domain

import (
	"encoding/json"
	"time"
)

// Message represents an immutable chat event. The ID is client-generated
// and is the key used for duplicate suppression.
type Message struct {
	ID       string
	ChatID   string
	SenderID string
	Text     string
	At       time.Time
}

// wireMessage is the JSON shape exchanged with clients.
// Timestamps travel as Unix milliseconds.
type wireMessage struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: m.At.UnixMilli(),
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		ID:       w.ID,
		ChatID:   w.ChatID,
		SenderID: w.SenderID,
		Text:     w.Text,
		At:       time.UnixMilli(w.Timestamp).UTC(),
	}
	return nil
}
