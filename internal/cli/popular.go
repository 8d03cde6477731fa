package cli

import "github.com/spf13/cobra"

func newPopularCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "popular",
		Short: "Show popular queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, q := range app.suggester.Popular() {
				app.printer.Print("%d. %s", i+1, q)
			}
			return nil
		},
	}
}
