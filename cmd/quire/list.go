package main

import (
	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	listQuery string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally filtered by a search query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctrl := app.Controller
		ctrl.SetQuery(listQuery)

		if listJSON {
			return printJSON(cmd.OutOrStdout(), ctrl.Filtered())
		}
		printNotes(cmd.OutOrStdout(), ctrl.Filtered(), "", ctrl.Stats())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only notes whose title or content contains the query (case-insensitive)")
}
