package domain

import (
	"encoding/json"
	"time"
)

// Note is a free-text remark attached to a single lead.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	LeadID    int64     `json:"lead_id" db:"lead_id"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NoteInput is the body of an add-note request.
type NoteInput struct {
	Note *string `json:"note"`
}

func (in *NoteInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Note json.RawMessage `json:"note"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	note, err := textValue(raw.Note)
	if err != nil {
		return err
	}
	in.Note = note
	return nil
}

// Validate requires the note key to be present and non-null.
func (in NoteInput) Validate() error {
	if in.Note == nil {
		return &ValidationError{Field: "note", Message: "Note content is required"}
	}
	return nil
}
