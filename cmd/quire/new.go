package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
)

var (
	newTitle   string
	newContent string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Long:  `Create a note with the given title and content. Use --content - to read the content from stdin.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd, newContent)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Controller.StartNew(ctx)
		note, ok := app.Controller.Save(ctx, core.Draft{Title: newTitle, Content: content})
		if !ok {
			return fmt.Errorf("note was not created")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", note.ID)
		return nil
	},
}

// readContent resolves "-" to the whole of stdin.
func readContent(cmd *cobra.Command, value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read content from stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Note title")
	newCmd.Flags().StringVarP(&newContent, "content", "c", "", "Note content, or - for stdin")
}
