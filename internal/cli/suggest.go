package cli

import (
	"bufio"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Queun/ai-teach-platform-sub000/internal/session"
)

func newSuggestCommand(app *App) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "suggest [prefix]",
		Short: "Show typeahead suggestions",
		Long: `Show suggestions for a partial query. With --interactive, each line read
from stdin is treated as a keystroke update and only the input that
settles for the debounce delay is answered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runInteractiveSuggest(cmd, app)
			}
			query := strings.Join(args, " ")
			for _, s := range app.suggester.Suggest(query) {
				app.printer.Print("%s", s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read updates from stdin")
	return cmd
}

// suggestPrinter prints each settled query once. After finish, late timer
// callbacks are dropped.
type suggestPrinter struct {
	printer *Printer

	mu        sync.Mutex
	delivered bool
	last      string
	finished  bool
}

func (p *suggestPrinter) deliver(query string, suggestions []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.print(query, suggestions)
}

// finish answers the final input unless a timer already printed it.
func (p *suggestPrinter) finish(query string, suggestions []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	if p.delivered && p.last == query {
		return
	}
	p.print(query, suggestions)
}

func (p *suggestPrinter) print(query string, suggestions []string) {
	p.printer.Info("%s → %s", query, strings.Join(suggestions, " | "))
	p.delivered, p.last = true, query
}

func runInteractiveSuggest(cmd *cobra.Command, app *App) error {
	out := &suggestPrinter{printer: app.printer}
	debounced := session.NewDebouncedSuggester(app.suggester, app.cfg.Suggest.Delay, out.deliver)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	var last string
	for scanner.Scan() {
		last = strings.TrimSpace(scanner.Text())
		debounced.Input(last)
	}
	debounced.Stop()
	if err := scanner.Err(); err != nil {
		return err
	}

	// Input is exhausted; answer the final state without waiting.
	out.finish(last, app.suggester.Suggest(last))
	return nil
}
