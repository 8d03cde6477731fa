package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/session"
)

func newSearchCommand(app *App) *cobra.Command {
	var (
		category  string
		limit     int
		page      int
		asJSON    bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tools, news and resources",
		Long: `Search the catalogue. Matching terms are highlighted in titles and the
query is added to the local history.

Examples:
  jiaoxue search chatgpt
  jiaoxue search "AI 写作" --category tools --limit 5
  jiaoxue search 课件 --page 2 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := domain.ParseCategory(category)
			if err != nil {
				return err
			}
			q := domain.SearchQuery{
				Query:    strings.Join(args, " "),
				Category: cat,
				Limit:    limit,
				Page:     page,
			}.WithDefaults()

			ctx := cmd.Context()
			resp, err := app.client.Search(ctx, q)
			if err != nil {
				app.printer.Warning("search temporarily unavailable, try again later")
				return err
			}

			if !noHistory && !q.IsBlank() {
				history, err := app.historyService(ctx)
				if err == nil {
					_, err = history.Add(ctx, q.Query, resp.Total)
				}
				if err != nil {
					app.log.Warn("could not record search history", "error", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printResults(app.printer, session.NewHighlighter(nil), q, resp)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "all", "all, tools, news or resources")
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultSearchLimit, "results per page")
	cmd.Flags().IntVarP(&page, "page", "p", domain.DefaultSearchPage, "page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the raw response as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the query")
	return cmd
}

func printResults(p *Printer, h *session.Highlighter, q domain.SearchQuery, resp *domain.SearchResponse) error {
	if resp.Total == 0 {
		p.Info("No results for %q", resp.Query)
		return nil
	}

	p.Info("%d results for %q (tools %d, news %d, resources %d)",
		resp.Total, resp.Query, resp.Categories.Tools, resp.Categories.News, resp.Categories.Resources)
	if len(resp.FailedCategories) > 0 {
		failed := make([]string, len(resp.FailedCategories))
		for i, c := range resp.FailedCategories {
			failed[i] = string(c)
		}
		p.Warning("incomplete results, unavailable: %s", strings.Join(failed, ", "))
	}

	rows := make([][]string, 0, len(resp.Results))
	for i, r := range resp.Results {
		rows = append(rows, []string{
			strconv.Itoa((q.Page-1)*q.Limit + i + 1),
			string(r.Type),
			p.Marks(h.Highlight(r.Title, q.Query)),
			strconv.FormatFloat(r.Score, 'f', 1, 64),
			r.URL,
		})
	}
	if err := p.Table([]string{"#", "Type", "Title", "Score", "URL"}, rows); err != nil {
		return err
	}

	if shown := (q.Page-1)*q.Limit + len(resp.Results); shown < resp.Total {
		p.Print(p.Dim(fmt.Sprintf("page %d, use --page %d for more", q.Page, q.Page+1)))
	}
	return nil
}
