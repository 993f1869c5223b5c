package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/quire/pkg/core"
)

// Export writes every note to dir as <id>.md, creating dir when needed.
// Each file is replaced atomically. It returns the number of files written.
func Export(ctx context.Context, dir string, notes []core.Note) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	written := 0
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := validateKey(n.ID); err != nil {
			return written, fmt.Errorf("cannot export note: %w", err)
		}

		data, err := MarshalMarkdown(n)
		if err != nil {
			return written, fmt.Errorf("failed to render note %s: %w", n.ID, err)
		}
		if err := replaceFile(filepath.Join(dir, n.ID+".md"), data); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
