package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatDescriptor_Roundtrip_Preserves_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	raw := `{"id":"chat-1","name":"plans","participants":["alice","bob"],"topic":"friday","pinned":true}`

	// When the descriptor is decoded and encoded again
	var desc ChatDescriptor
	req.NoError(json.Unmarshal([]byte(raw), &desc))
	req.Equal("chat-1", desc.ID)
	req.Equal("plans", desc.Name)
	req.Equal([]string{"alice", "bob"}, desc.Participants)

	out, err := json.Marshal(desc)
	req.NoError(err)

	// Then the extra fields survived verbatim
	var decoded map[string]any
	req.NoError(json.Unmarshal(out, &decoded))
	req.Equal("friday", decoded["topic"])
	req.Equal(true, decoded["pinned"])
	req.Equal("chat-1", decoded["id"])
}

func TestChatDescriptor_Marshal_Omits_Empty_Name(t *testing.T) {
	req := require.New(t)
	desc := ChatDescriptor{ID: "chat-1", Participants: []string{"alice"}}

	out, err := json.Marshal(desc)
	req.NoError(err)

	var decoded map[string]any
	req.NoError(json.Unmarshal(out, &decoded))
	req.NotContains(decoded, "name")
}

func TestChatDescriptor_Marshal_Nil_Participants_Is_Empty_Array(t *testing.T) {
	req := require.New(t)
	desc := ChatDescriptor{ID: "chat-1"}

	out, err := json.Marshal(desc)
	req.NoError(err)

	req.Contains(string(out), `"participants":[]`)
}

func TestChatDescriptor_Clone_Detached(t *testing.T) {
	req := require.New(t)
	desc := ChatDescriptor{
		ID:           "chat-1",
		Participants: []string{"alice"},
		Extra:        map[string]json.RawMessage{"topic": json.RawMessage(`"x"`)},
	}

	clone := desc.Clone()
	clone.Participants[0] = "mallory"
	clone.Extra["topic"] = json.RawMessage(`"y"`)

	req.Equal([]string{"alice"}, desc.Participants)
	req.Equal(json.RawMessage(`"x"`), desc.Extra["topic"])
}
