package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

func newItemsShareCmd(app *App) *cobra.Command {
	var (
		raw   bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print the list as a markdown checklist grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			md := shareMarkdown(sess.mgr.Items(), grocery.DefaultRegistry())
			if raw || app.wantJSON() {
				return writeOut(cmd, app, map[string]string{"markdown": md}, md)
			}

			style := "dark"
			if app.NoColor {
				style = "ascii"
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(envOr("LISTIFY_MD_STYLE", style)),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source instead of rendering it")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for rendered output")
	return cmd
}

// shareMarkdown groups items under registry headings in registry order.
// Items with an empty or unknown category go under a trailing "Other items"
// heading; list order is kept within each group.
func shareMarkdown(items []model.GroceryItem, reg *grocery.Registry) string {
	groups := make(map[string][]model.GroceryItem)
	var loose []model.GroceryItem
	for _, item := range items {
		entry, err := reg.Find(item.Category)
		if err != nil {
			loose = append(loose, item)
			continue
		}
		groups[entry.Key] = append(groups[entry.Key], item)
	}

	var b strings.Builder
	b.WriteString("# Grocery list\n")
	if len(items) == 0 {
		b.WriteString("\nNothing to buy.\n")
		return b.String()
	}

	section := func(title string, items []model.GroceryItem) {
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, item := range items {
			check := " "
			if item.IsBought {
				check = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s x%d\n", check, markdownText(item.Name), item.Quantity)
		}
	}
	for _, entry := range reg.All() {
		if g := groups[entry.Key]; len(g) > 0 {
			section(entry.DisplayLabel, g)
		}
	}
	if len(loose) > 0 {
		section("Other items", loose)
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "<", `\<`, ">", `\>`, "!", `\!`, "|", `\|`, "~", `\~`,
)

// markdownText keeps a user-supplied name on one line and inert inside a
// checklist entry.
func markdownText(s string) string {
	return markdownEscaper.Replace(strings.Join(strings.Fields(s), " "))
}
