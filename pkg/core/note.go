package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Note is the central entity of the domain.
// It is the only record persisted by the store; ID and CreatedAt never change
// once the note has been created.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft is the title/content pair being edited by the presentation layer.
// An empty ID (or one that matches no note) means "create".
type Draft struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DraftOf returns the draft that reproduces n's editable fields.
func DraftOf(n Note) Draft {
	return Draft{ID: n.ID, Title: n.Title, Content: n.Content}
}

// Differs reports whether the draft's editable fields differ from n.
func (d Draft) Differs(n Note) bool {
	return d.Title != n.Title || d.Content != n.Content
}

const (
	untitled       = "Untitled"
	previewLimit   = 90
	previewEllipse = "…"
)

// DisplayTitle returns the trimmed title, or "Untitled" when it is blank.
// Stored titles are never rewritten; this is for list rendering only.
func DisplayTitle(n Note) string {
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	return untitled
}

// Preview collapses whitespace in the content and truncates it to 90 runes.
func Preview(n Note) string {
	s := strings.Join(strings.Fields(n.Content), " ")
	if utf8.RuneCountInString(s) <= previewLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLimit-1]) + previewEllipse
}
