package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// Feed carries live-view snapshots to the UI. It holds at most one pending
// snapshot and a newer one replaces it, so a slow UI never blocks the
// manager and always renders the latest list.
type Feed struct {
	ch chan []model.GroceryItem
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan []model.GroceryItem, 1)}
}

// Push is a grocery.Listener.
func (f *Feed) Push(items []model.GroceryItem) {
	for {
		select {
		case f.ch <- items:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

type itemsMsg []model.GroceryItem

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return itemsMsg(<-f.ch)
	}
}
