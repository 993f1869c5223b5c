package fs

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quire/pkg/core"
)

// frontmatter is the YAML header of an exported note.
type frontmatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Created string `yaml:"created"`
	Updated string `yaml:"updated"`
}

// MarshalMarkdown renders n as a Markdown document whose YAML frontmatter
// carries the note metadata and whose body is the note content.
func MarshalMarkdown(n core.Note) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{
		ID:      n.ID,
		Title:   n.Title,
		Created: n.CreatedAt.UTC().Format(time.RFC3339),
		Updated: n.UpdatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	if n.Content != "" && n.Content[len(n.Content)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
