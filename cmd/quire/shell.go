package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/session"
)

const msgQuitDirty = "You have unsaved changes. Quit anyway?"

var (
	shellAutosave time.Duration
	shellWatch    bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit notes interactively in a single session",
	Long: `Shell keeps one editing session open: select a note, change its title
and body, save, delete, search. Switching away from unsaved changes asks for
confirmation first. Type "help" for the command list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path, err := resolveDataPath()
		if err != nil {
			return err
		}

		in := bufio.NewReader(cmd.InOrStdin())
		confirmer := newTerminalConfirmer(in, cmd.OutOrStdout(), assumeYes)

		var extra []quire.Option
		extra = append(extra, quire.WithConfirmer(confirmer))
		if cmd.Flags().Changed("autosave") {
			extra = append(extra, quire.WithAutosave(shellAutosave))
		}
		if cmd.Flags().Changed("watch") {
			extra = append(extra, quire.WithWatch(shellWatch))
		}

		app, err := quire.New(ctx, path, sessionOptions(extra...)...)
		if err != nil {
			return fmt.Errorf("failed to open notes at %s: %w", path, err)
		}
		defer app.Close()

		sh := &shell{ctrl: app.Controller, confirm: confirmer, in: in, out: cmd.OutOrStdout()}
		return sh.run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().DurationVar(&shellAutosave, "autosave", 0, "Save unsaved changes periodically (minimum 1s, 0 disables)")
	shellCmd.Flags().BoolVar(&shellWatch, "watch", false, "Reload when the notes change on disk")
}

// shell is a line-oriented front end over one session.Controller.
type shell struct {
	ctrl    *session.Controller
	confirm session.Confirmer
	in      *bufio.Reader
	out     io.Writer
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, `quire shell. Type "help" for commands.`)
	s.list()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, s.prompt())

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		atEOF := err != nil

		line = strings.TrimSpace(line)
		if line != "" {
			if quit := s.exec(ctx, line); quit {
				return nil
			}
		}
		if atEOF {
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

func (s *shell) prompt() string {
	snap := s.ctrl.Snapshot()
	marker := ""
	if snap.Dirty {
		marker = "*"
	}
	switch snap.Mode {
	case session.ModeCreating:
		return "quire(new" + marker + ")> "
	case session.ModeEditing:
		n, _ := s.ctrl.Selected()
		return "quire(" + core.DisplayTitle(n) + marker + ")> "
	}
	return "quire> "
}

// exec runs a single command line and reports whether the shell should stop.
func (s *shell) exec(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "help", "?":
		s.help()
	case "list", "ls":
		s.list()
	case "search", "find":
		s.ctrl.SetQuery(arg)
		s.list()
	case "select", "open":
		s.selectNote(ctx, arg)
	case "new":
		if !s.ctrl.StartNew(ctx) {
			fmt.Fprintln(s.out, "Kept the current draft.")
		}
	case "title":
		s.setDraft(arg, s.ctrl.Draft().Content)
	case "body":
		body := unescape(arg)
		if arg == "" {
			body = s.readMultiline()
		}
		s.setDraft(s.ctrl.Draft().Title, body)
	case "show":
		s.show()
	case "save":
		if note, ok := s.ctrl.SaveDraft(ctx); ok {
			fmt.Fprintf(s.out, "Saved %s.\n", note.ID)
		} else {
			fmt.Fprintln(s.out, "Nothing to save. Use new or select first.")
		}
	case "delete", "rm":
		id := s.ctrl.SelectedID()
		if id == "" {
			fmt.Fprintln(s.out, "No note selected.")
		} else if s.ctrl.Delete(ctx, id) {
			fmt.Fprintf(s.out, "Deleted %s.\n", id)
		} else {
			fmt.Fprintln(s.out, "Note kept.")
		}
	case "refresh":
		if s.ctrl.Refresh(ctx) {
			fmt.Fprintln(s.out, "Notes reloaded.")
		} else {
			fmt.Fprintln(s.out, "Already up to date.")
		}
	case "status":
		s.status()
	case "quit", "exit", "q":
		return s.quit(ctx)
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type \"help\" for commands.\n", name)
	}
	return false
}

func (s *shell) help() {
	fmt.Fprint(s.out, `Commands:
  list                 show the notes matching the current search
  search [text]        filter by title or content; empty clears the filter
  select <n|id>        edit note number n of the list, or the note with id
  new                  start a new note
  title <text>         set the draft title
  body [text]          set the draft body ("\n" for newlines); no text reads lines until an empty one
  show                 print the draft
  save                 save the draft
  delete               delete the selected note
  refresh              reload notes changed by another program
  status               print the session state
  quit                 leave the shell
`)
}

func (s *shell) list() {
	snap := s.ctrl.Snapshot()
	printNotes(s.out, snap.Filtered, snap.SelectedID, s.ctrl.Stats())
}

// selectNote accepts a 1-based position in the filtered list or an id.
func (s *shell) selectNote(ctx context.Context, arg string) {
	if arg == "" {
		fmt.Fprintln(s.out, "Usage: select <n|id>")
		return
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		filtered := s.ctrl.Filtered()
		if n < 1 || n > len(filtered) {
			fmt.Fprintf(s.out, "No note number %d.\n", n)
			return
		}
		id = filtered[n-1].ID
	}

	if _, exists := findNote(s.ctrl.Notes(), id); !exists {
		fmt.Fprintf(s.out, "No note %q.\n", id)
		return
	}
	if !s.ctrl.Select(ctx, id) {
		fmt.Fprintln(s.out, "Kept the current draft.")
		return
	}
	s.show()
}

func (s *shell) setDraft(title, content string) {
	if !s.ctrl.SetDraft(title, content) {
		fmt.Fprintln(s.out, "Nothing to edit. Use new or select first.")
	}
}

func (s *shell) show() {
	snap := s.ctrl.Snapshot()
	if snap.Mode == session.ModeEmpty {
		fmt.Fprintln(s.out, "Nothing selected.")
		return
	}

	state := "saved"
	if snap.Dirty {
		state = "unsaved changes"
	}
	fmt.Fprintf(s.out, "# %s (%s)\n", snap.Draft.Title, state)
	if snap.Draft.Content != "" {
		fmt.Fprintln(s.out, snap.Draft.Content)
	}
}

func (s *shell) status() {
	snap := s.ctrl.Snapshot()
	stats := s.ctrl.Stats()
	fmt.Fprintf(s.out, "mode:     %s\n", snap.Mode)
	fmt.Fprintf(s.out, "selected: %s\n", snap.SelectedID)
	fmt.Fprintf(s.out, "dirty:    %t\n", snap.Dirty)
	fmt.Fprintf(s.out, "search:   %q\n", snap.Query)
	fmt.Fprintf(s.out, "notes:    %d shown of %d\n", stats.Shown, stats.Total)
}

func (s *shell) quit(ctx context.Context) bool {
	if !s.ctrl.Dirty() {
		return true
	}
	ok, err := s.confirm.Confirm(ctx, session.Prompt{Kind: session.PromptDiscard, Message: msgQuitDirty})
	return err == nil && ok
}

// readMultiline reads lines until an empty one.
func (s *shell) readMultiline() string {
	fmt.Fprintln(s.out, "(press Enter on an empty line to finish)")

	var lines []string
	for {
		line, err := s.in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func findNote(notes []core.Note, id string) (core.Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return core.Note{}, false
}
