package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
)

// execute runs the root command against a private data directory.
func execute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--path", dir, "--config", filepath.Join(dir, "none.yaml")}, args...))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCLI_Lifecycle(t *testing.T) {
	withTerminal(t, false)
	dir := t.TempDir()

	out := execute(t, dir, "new", "--title", "Groceries", "--content", "milk")
	require.Contains(t, out, "Note created: ")
	id := strings.TrimSpace(strings.TrimPrefix(out, "Note created: "))

	out = execute(t, dir, "list", "--json")
	var notes []core.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, id, notes[0].ID)

	out = execute(t, dir, "show", id)
	assert.Contains(t, out, "title:   Groceries")
	assert.Contains(t, out, "milk")

	out = execute(t, dir, "delete", id)
	assert.Contains(t, out, "declined: not a terminal")
	assert.Contains(t, out, "Note kept: "+id)

	out = execute(t, dir, "export", filepath.Join(dir, "md"))
	assert.Contains(t, out, "Exported 1 notes")
	assert.FileExists(t, filepath.Join(dir, "md", id+".md"))

	out = execute(t, dir, "state")
	assert.Contains(t, out, `"fs-store"`)

	out = execute(t, dir, "version")
	assert.Contains(t, out, "quire version")
}
