package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/adapters/fs"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write every note as Markdown with YAML frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		count, err := fs.Export(ctx, args[0], app.Repository.List())
		if err != nil {
			return fmt.Errorf("export failed after %d notes: %w", count, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", count, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
