package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/logging"
	"github.com/villegasmiguelangel268-maker/listify/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive grocery list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", envOr("LISTIFY_LOG_FILE", ""), "Append logs to this file while the TUI runs")
	return cmd
}

// runTUI keeps log output off the terminal the UI draws on.
func runTUI(cmd *cobra.Command, app *App, logFile string) error {
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	app.logger = logging.SetupWriter(out, app.cfg.LogLevel, app.cfg.LogFormat)

	sess, err := app.open(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	return tui.Run(cmd.Context(), sess.mgr, grocery.DefaultRegistry())
}
