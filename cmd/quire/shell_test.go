package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

// runShell feeds script to a fresh shell over repo and returns its output.
func runShell(t *testing.T, repo *core.Repository, confirm session.Confirmer, script string) (string, *session.Controller) {
	t.Helper()
	ctrl := session.NewController(repo, session.Config{Confirmer: confirm})

	var out bytes.Buffer
	sh := &shell{
		ctrl:    ctrl,
		confirm: confirm,
		in:      bufio.NewReader(strings.NewReader(script)),
		out:     &out,
	}
	require.NoError(t, sh.run(context.Background()))
	return out.String(), ctrl
}

func newRepo(t *testing.T, titles ...string) *core.Repository {
	t.Helper()
	ctx := context.Background()
	repo := core.NewRepository(memory.NewStore(), core.RepositoryConfig{})
	repo.Load(ctx)
	for _, title := range titles {
		repo.Upsert(ctx, core.Draft{Title: title})
	}
	return repo
}

func TestShell_CreateAndSave(t *testing.T) {
	repo := newRepo(t)

	out, ctrl := runShell(t, repo, session.Never(), strings.Join([]string{
		"new",
		"title Groceries",
		`body milk\neggs`,
		"save",
		"list",
		"quit",
	}, "\n"))

	assert.Contains(t, out, "No notes yet.")
	assert.Contains(t, out, "Saved ")
	require.Equal(t, 1, repo.Len())
	n := repo.List()[0]
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "milk\neggs", n.Content)
	assert.Equal(t, n.ID, ctrl.SelectedID())
	assert.Contains(t, out, "1 of 1 notes")
}

func TestShell_DirtySwitchDeclined(t *testing.T) {
	repo := newRepo(t, "first", "second")

	out, ctrl := runShell(t, repo, session.Never(), strings.Join([]string{
		"title changed",
		"select 2",
		"quit",
		"status",
	}, "\n"))

	assert.Contains(t, out, "Kept the current draft.")
	assert.Equal(t, repo.List()[0].ID, ctrl.SelectedID())
	assert.True(t, ctrl.Dirty(), "declined switch keeps the draft")
	assert.Contains(t, out, "mode:     editing", "declined quit keeps the shell running")
	assert.Equal(t, "first", repo.List()[0].Title)
}

func TestShell_DeleteConfirmed(t *testing.T) {
	repo := newRepo(t, "only")

	out, ctrl := runShell(t, repo, session.Always(), "delete\nlist\n")

	assert.Contains(t, out, "Deleted ")
	assert.Contains(t, out, "No notes yet.")
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, session.ModeEmpty, ctrl.Mode())
}

func TestShell_Search(t *testing.T) {
	repo := newRepo(t, "Foobar", "baz")

	out, _ := runShell(t, repo, session.Never(), "search FOO\nsearch nothing-like-it\nsearch\n")

	assert.Contains(t, out, "1 of 2 notes")
	assert.Contains(t, out, "No matches.")
	assert.Contains(t, out, "2 of 2 notes")
}

func TestShell_Errors(t *testing.T) {
	repo := newRepo(t)

	out, _ := runShell(t, repo, session.Never(), strings.Join([]string{
		"title orphan",
		"save",
		"select 3",
		"select ghost",
		"delete",
		"frobnicate",
	}, "\n"))

	assert.Contains(t, out, "Nothing to edit.")
	assert.Contains(t, out, "Nothing to save.")
	assert.Contains(t, out, "No note number 3.")
	assert.Contains(t, out, `No note "ghost".`)
	assert.Contains(t, out, "No note selected.")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
}

func TestShell_MultilineBody(t *testing.T) {
	repo := newRepo(t, "note")

	_, ctrl := runShell(t, repo, session.Never(), "body\nline one\nline two\n\n")

	assert.Equal(t, "line one\nline two", ctrl.Draft().Content)
	assert.True(t, ctrl.Dirty())
}

func TestShell_Prompt(t *testing.T) {
	repo := newRepo(t, "  ")
	ctrl := session.NewController(repo, session.Config{})
	sh := &shell{ctrl: ctrl}

	assert.Equal(t, "quire(Untitled)> ", sh.prompt())
	ctrl.SetDraft("x", "")
	assert.Equal(t, "quire(Untitled*)> ", sh.prompt())
}
