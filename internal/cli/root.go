// Package cli implements the jiaoxue command line client: searches against
// the API with local history, suggestions and highlighting.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Queun/ai-teach-platform-sub000/internal/apperrors"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/historystore"
	"github.com/Queun/ai-teach-platform-sub000/internal/session"
)

// App carries the state shared by all commands.
type App struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	noColor bool

	cfg *Config
	log *slog.Logger

	printer   *Printer
	store     historystore.Store
	history   *session.HistoryService
	suggester *session.Suggester
	client    *APIClient
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	app := &App{v: viper.New()}

	root := &cobra.Command{
		Use:   "jiaoxue",
		Short: "Search the 爱教学 catalogue from the terminal",
		Long: `jiaoxue searches AI tools, news and teaching resources through the
search API and keeps a local history of your queries.

Example usage:
  jiaoxue search chatgpt              # Search every collection
  jiaoxue search 写作 -c tools        # Only AI tools
  jiaoxue history list                # Recent queries
  jiaoxue suggest ai                  # Typeahead suggestions
  jiaoxue popular                     # Popular queries`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default is .jiaoxue.yaml)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&app.noColor, "no-color", false, "disable colored output")
	flags.String("server", "", "search API base URL")
	flags.String("history-backend", "", "history storage: memory, file or redis")
	_ = app.v.BindPFlag("server.url", flags.Lookup("server"))
	_ = app.v.BindPFlag("history.backend", flags.Lookup("history-backend"))

	root.AddCommand(
		newSearchCommand(app),
		newHistoryCommand(app),
		newSuggestCommand(app),
		newPopularCommand(app),
	)
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.log.Debug("configuration loaded",
		"server", cfg.Server.URL,
		"history_backend", cfg.History.Backend,
	)

	a.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output.Colors && !a.noColor)
	a.suggester = session.NewSuggester(session.DefaultCurated())
	a.client = NewAPIClient(cfg.Server.URL, cfg.Server.Timeout)
	return nil
}

// historyService opens the history backend on first use.
func (a *App) historyService(ctx context.Context) (*session.HistoryService, error) {
	if a.history != nil {
		return a.history, nil
	}
	store, err := historystore.Open(ctx, a.cfg.History.StoreConfig())
	if err != nil {
		return nil, apperrors.StorageError("history.open", err)
	}
	a.store = store
	a.history = session.NewHistoryService(store)
	return a.history, nil
}

func (a *App) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.history = nil, nil
	return err
}
