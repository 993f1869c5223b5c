package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeNotes serializes the collection as an ordered JSON array.
// Timestamps are written as RFC 3339 strings.
func EncodeNotes(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	return json.MarshalIndent(notes, "", "  ")
}

// DecodeNotes parses a blob produced by EncodeNotes.
// Unknown fields are ignored; anything that is not a JSON array of note
// records is rejected.
func DecodeNotes(data []byte) ([]Note, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid notes blob: empty")
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("invalid notes blob: %w", err)
	}
	return notes, nil
}
