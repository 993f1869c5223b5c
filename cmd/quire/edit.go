package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editTitle   string
	editContent string
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the title and/or content of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleSet := cmd.Flags().Changed("title")
		contentSet := cmd.Flags().Changed("content")
		if !titleSet && !contentSet {
			return fmt.Errorf("nothing to change: pass --title and/or --content")
		}

		content, err := readContent(cmd, editContent)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctrl := app.Controller
		if !ctrl.Select(ctx, args[0]) {
			return fmt.Errorf("note not found: %s", args[0])
		}

		draft := ctrl.Draft()
		if titleSet {
			draft.Title = editTitle
		}
		if contentSet {
			draft.Content = content
		}
		ctrl.SetDraft(draft.Title, draft.Content)

		if _, saved := ctrl.SaveIfDirty(ctx); !saved {
			fmt.Fprintf(cmd.OutOrStdout(), "Note unchanged: %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content, or - for stdin")
}
