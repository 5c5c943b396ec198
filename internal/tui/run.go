package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
)

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, mgr *grocery.Manager, reg *grocery.Registry) error {
	feed := NewFeed()
	unsubscribe := mgr.Subscribe(feed.Push)
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, mgr, reg, feed), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
