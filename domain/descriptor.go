package domain

import "encoding/json"

// ChatDescriptor is the client-supplied description of a chat: its identity,
// its participant list and whatever extra fields the client attached.
// Unknown fields are preserved verbatim so that invites forward the
// descriptor exactly as it was received, not a reconstruction of it.
type ChatDescriptor struct {
	ID           string
	Name         string
	Participants []string
	Extra        map[string]json.RawMessage
}

func (d *ChatDescriptor) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := ChatDescriptor{}
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &out.ID); err != nil {
			return err
		}
		delete(fields, "id")
	}
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &out.Name); err != nil {
			return err
		}
		delete(fields, "name")
	}
	if raw, ok := fields["participants"]; ok {
		if err := json.Unmarshal(raw, &out.Participants); err != nil {
			return err
		}
		delete(fields, "participants")
	}
	if len(fields) > 0 {
		out.Extra = fields
	}
	*d = out
	return nil
}

func (d ChatDescriptor) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(d.Extra)+3)
	for k, v := range d.Extra {
		fields[k] = v
	}

	id, err := json.Marshal(d.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = id

	if d.Name != "" {
		name, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}

	// Clients treat participants as an array; never ship null.
	list := d.Participants
	if list == nil {
		list = []string{}
	}
	participants, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	fields["participants"] = participants

	return json.Marshal(fields)
}

// Clone returns a deep copy, detaching the participant slice and the raw
// extra fields from the original.
func (d ChatDescriptor) Clone() ChatDescriptor {
	out := ChatDescriptor{ID: d.ID, Name: d.Name}
	if d.Participants != nil {
		out.Participants = append([]string(nil), d.Participants...)
	}
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}
