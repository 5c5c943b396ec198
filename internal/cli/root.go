package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/config"
	"github.com/villegasmiguelangel268-maker/listify/internal/logging"
	"github.com/villegasmiguelangel268-maker/listify/internal/tui"
)

type App struct {
	DBPath    string
	LogLevel  string
	LogFormat string
	JSON      bool
	Pretty    bool
	NoColor   bool

	cfg    config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "listify",
		Short:        "Grocery list with a terminal UI, HTTP API and live updates",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  listify

  # Serve the HTTP API and WebSocket live view
  listify serve --port 8080

  # Scriptable commands
  listify items add Milk --qty 2
  listify items list --query dr --json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.DBPath = app.DBPath
		cfg.LogLevel = app.LogLevel
		cfg.LogFormat = app.LogFormat
		app.cfg = cfg
		app.logger = logging.SetupWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		tui.ApplyColorProfile(app.NoColor)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("LISTIFY_DB_PATH", config.DefaultDBPath), "SQLite database path (empty keeps the list in memory)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("LISTIFY_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFormat, "log-format", envOr("LISTIFY_LOG_FORMAT", "text"), "Log format (text|json)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Write JSON instead of text")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output (implies --json)")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors (NO_COLOR is honored too)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newBackupCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (app *App) wantJSON() bool {
	return app.JSON || app.Pretty
}

func writeJSON(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// writeOut prints v as JSON when requested and text otherwise.
func writeOut(cmd *cobra.Command, app *App, v any, text string) error {
	if app.wantJSON() {
		return writeJSON(cmd, app, v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
