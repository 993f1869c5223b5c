package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

// emptyMessage is what the list shows instead of rows.
func emptyMessage(s session.EmptyState) string {
	switch s {
	case session.EmptyNoNotes:
		return "No notes yet. Create one with `quire new`."
	case session.EmptyNoMatches:
		return "No matches."
	}
	return ""
}

// printNotes writes one row per note. The row of selectedID is marked.
func printNotes(w io.Writer, notes []core.Note, selectedID string, stats session.Stats) {
	if stats.Empty != session.EmptyNone {
		fmt.Fprintln(w, emptyMessage(stats.Empty))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, n := range notes {
		marker := " "
		if n.ID == selectedID {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %d\t%s\t%s\t%s\t%s\n", marker, i+1, n.ID, core.DisplayTitle(n), core.Preview(n), n.UpdatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d of %d notes\n", stats.Shown, stats.Total)
}

// printNote writes a single note in full.
func printNote(w io.Writer, n core.Note) {
	fmt.Fprintf(w, "id:      %s\n", n.ID)
	fmt.Fprintf(w, "title:   %s\n", core.DisplayTitle(n))
	fmt.Fprintf(w, "created: %s\n", n.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "updated: %s\n", n.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(w)
	fmt.Fprintln(w, n.Content)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
