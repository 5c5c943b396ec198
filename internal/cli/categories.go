package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/tui"
)

func newCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the known categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := grocery.DefaultRegistry().All()
			if app.wantJSON() {
				return writeJSON(cmd, app, entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s  %s %s\n", e.Key, tui.CategoryChip(e), e.ColorToken, e.IconToken)
			}
			return nil
		},
	}
}
