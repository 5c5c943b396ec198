package grocery

import (
	"strings"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// Filter returns the items whose name or category contains query,
// case-insensitively, preserving order. An empty query returns items as-is.
func Filter(items []model.GroceryItem, query string) []model.GroceryItem {
	if query == "" {
		return items
	}

	q := strings.ToLower(query)
	out := make([]model.GroceryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Category), q) {
			out = append(out, item)
		}
	}
	return out
}

// ClampQuantity raises input quantities below 1 to 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
