package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
	"github.com/villegasmiguelangel268-maker/listify/internal/tui"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "List and change grocery items",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsToggleCmd(app))
	cmd.AddCommand(newItemsRmCmd(app))
	cmd.AddCommand(newItemsShareCmd(app))
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items, optionally filtered by name or category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			items := sess.mgr.Search(query)
			if app.wantJSON() {
				return writeJSON(cmd, app, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items.")
				return nil
			}
			for _, item := range items {
				fmt.Fprintln(cmd.OutOrStdout(), formatItem(item))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive substring of name or category")
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var (
		qty      int
		category string
	)

	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add an item",
		Example: strings.TrimSpace(`
  listify items add Milk --qty 2
  listify items add Dish soap --category household
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			cat, err := resolveCategory(category, name)
			if err != nil {
				return err
			}

			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			item, err := sess.mgr.Add(cmd.Context(), model.GroceryItem{
				Name:     name,
				Quantity: grocery.ClampQuantity(qty),
				Category: cat,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, item, "Added "+formatItem(item))
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity (values below 1 become 1)")
	cmd.Flags().StringVar(&category, "category", "", "Category key (default: suggested from the name)")
	return cmd
}

func newItemsEditCmd(app *App) *cobra.Command {
	var (
		name     string
		qty      int
		category string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an item's name, quantity or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			item, ok := sess.mgr.Get(id)
			if !ok {
				return fmt.Errorf("item %d: %w", id, grocery.ErrNotFound)
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				item.Name = name
			}
			if flags.Changed("qty") {
				item.Quantity = grocery.ClampQuantity(qty)
			}
			if flags.Changed("category") {
				// An explicit empty value clears the category.
				if category == "" {
					item.Category = ""
				} else if item.Category, err = resolveCategory(category, item.Name); err != nil {
					return err
				}
			}

			updated, err := sess.mgr.Update(cmd.Context(), item)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, updated, "Saved "+formatItem(updated))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().IntVar(&qty, "qty", 1, "New quantity")
	cmd.Flags().StringVar(&category, "category", "", "New category key (empty clears it)")
	return cmd
}

func newItemsToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip an item's bought flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			item, err := sess.mgr.ToggleBought(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, item, formatItem(item))
		},
	}
}

func newItemsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			item, ok := sess.mgr.Get(id)
			if !ok {
				return fmt.Errorf("item %d: %w", id, grocery.ErrNotFound)
			}
			if err := sess.mgr.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"deleted": item}, "Deleted "+item.Name)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

// resolveCategory canonicalizes an explicit category key against the
// registry, or suggests one from the item name when none is given.
func resolveCategory(category, name string) (string, error) {
	if strings.TrimSpace(category) == "" {
		return grocery.Categorize(name), nil
	}
	entry, err := grocery.DefaultRegistry().Find(category)
	if err != nil {
		return "", err
	}
	return entry.Key, nil
}

func formatItem(item model.GroceryItem) string {
	check := "[ ]"
	if item.IsBought {
		check = "[x]"
	}
	line := fmt.Sprintf("%d  %s %s x%d", item.ID, check, item.Name, item.Quantity)
	if item.Category != "" {
		line += " " + tui.CategoryChip(grocery.DefaultRegistry().Lookup(item.Category))
	}
	return line
}
