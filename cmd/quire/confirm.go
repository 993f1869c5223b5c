package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/quire/pkg/session"
)

// isTerminal is a test seam for term.IsTerminal on stdin.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// terminalConfirmer asks yes/no questions on the terminal. Without a
// terminal it declines unless --yes was given, so scripts never block on
// a prompt and never lose data silently.
type terminalConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newTerminalConfirmer(in *bufio.Reader, out io.Writer, assumeYes bool) *terminalConfirmer {
	return &terminalConfirmer{in: in, out: out, assumeYes: assumeYes}
}

// Confirm implements session.Confirmer.
func (c *terminalConfirmer) Confirm(ctx context.Context, p session.Prompt) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if !isTerminal() {
		slog.Debug("no terminal to confirm on, declining", "kind", p.Kind)
		fmt.Fprintf(c.out, "%s (declined: not a terminal, pass --yes to confirm)\n", p.Message)
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(c.out, "%s [y/N] ", p.Message)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

var _ session.Confirmer = (*terminalConfirmer)(nil)
