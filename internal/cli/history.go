package cli

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or edit the local search history",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent queries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			history, err := app.historyService(ctx)
			if err != nil {
				return err
			}
			items, err := history.List(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if len(items) == 0 {
				app.printer.Info("No search history")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.Query,
					strconv.Itoa(item.ResultCount),
					item.Time().Local().Format(time.DateTime),
				})
			}
			return app.printer.Table([]string{"Query", "Results", "Searched"}, rows)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	remove := &cobra.Command{
		Use:     "remove <query>",
		Aliases: []string{"rm"},
		Short:   "Remove one query from the history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			history, err := app.historyService(ctx)
			if err != nil {
				return err
			}
			if _, err := history.Remove(ctx, args[0]); err != nil {
				return err
			}
			app.printer.Success("Removed %q", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			history, err := app.historyService(ctx)
			if err != nil {
				return err
			}
			if err := history.Clear(ctx); err != nil {
				return err
			}
			app.printer.Success("History cleared")
			return nil
		},
	}

	cmd.AddCommand(list, remove, clearCmd)
	return cmd
}
