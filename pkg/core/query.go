package core

import "strings"

// NormalizeQuery trims surrounding whitespace and lowercases the query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Matches reports whether n matches an already-normalized query.
// An empty query matches every note.
func Matches(n Note, normalized string) bool {
	if normalized == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), normalized) ||
		strings.Contains(strings.ToLower(n.Content), normalized)
}

// Filter returns the notes whose title or content contains query,
// case-insensitively, in their original relative order.
// The input slice is never modified.
func Filter(notes []Note, query string) []Note {
	q := NormalizeQuery(query)

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, q) {
			out = append(out, n)
		}
	}
	return out
}
