package domain

import (
	"encoding/json"
	"time"
)

// Chat is a named group of participants with a bounded message history.
// Chats are created once and never destroyed in-process; the participant
// list is fixed at creation time.
type Chat struct {
	ChatDescriptor

	Messages  []Message
	CreatedAt time.Time
}

// MarshalJSON flattens the descriptor fields (including preserved extras)
// and appends the stored history and creation time, matching the wire shape
// clients expect for initialChats.
func (c Chat) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(c.ChatDescriptor)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}

	messages := c.Messages
	if messages == nil {
		messages = []Message{}
	}
	rawMessages, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}
	fields["messages"] = rawMessages

	createdAt, err := json.Marshal(c.CreatedAt.UnixMilli())
	if err != nil {
		return nil, err
	}
	fields["createdAt"] = createdAt

	return json.Marshal(fields)
}

func (c *Chat) UnmarshalJSON(data []byte) error {
	var desc ChatDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return err
	}

	var shadow struct {
		Messages  []Message `json:"messages"`
		CreatedAt int64     `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	delete(desc.Extra, "messages")
	delete(desc.Extra, "createdAt")
	if len(desc.Extra) == 0 {
		desc.Extra = nil
	}

	*c = Chat{
		ChatDescriptor: desc,
		Messages:       shadow.Messages,
		CreatedAt:      time.UnixMilli(shadow.CreatedAt).UTC(),
	}
	return nil
}
