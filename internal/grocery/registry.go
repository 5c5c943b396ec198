package grocery

import (
	"strings"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// FallbackCategory is the registry key returned by Lookup for unknown keys.
const FallbackCategory = "Others"

// Registry is the fixed set of categories known to the app. It is built once
// and never mutated, so it is safe to share between goroutines.
type Registry struct {
	entries []model.CategoryEntry
	byKey   map[string]int
	byFold  map[string]int
}

// DefaultRegistry returns the built-in categories in display order.
func DefaultRegistry() *Registry {
	return newRegistry([]model.CategoryEntry{
		{Key: "Fruits", DisplayLabel: "Fruits", ColorToken: "#E57373", IconToken: "local_grocery_store"},
		{Key: "Vegetables", DisplayLabel: "Vegetables", ColorToken: "#81C784", IconToken: "eco"},
		{Key: "Meat", DisplayLabel: "Meat", ColorToken: "#D32F2F", IconToken: "restaurant"},
		{Key: "Seafood", DisplayLabel: "Seafood", ColorToken: "#0288D1", IconToken: "water"},
		{Key: "Snacks", DisplayLabel: "Snacks", ColorToken: "#FFA726", IconToken: "fastfood"},
		{Key: "Drinks", DisplayLabel: "Drinks", ColorToken: "#42A5F5", IconToken: "local_drink"},
		{Key: "Frozen", DisplayLabel: "Frozen", ColorToken: "#00BCD4", IconToken: "ac_unit"},
		{Key: "Household", DisplayLabel: "Household", ColorToken: "#8D6E63", IconToken: "home"},
		{Key: FallbackCategory, DisplayLabel: "Others", ColorToken: "#9E9E9E", IconToken: "category"},
	})
}

func newRegistry(entries []model.CategoryEntry) *Registry {
	r := &Registry{
		entries: entries,
		byKey:   make(map[string]int, len(entries)),
		byFold:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		r.byKey[e.Key] = i
		r.byFold[strings.ToLower(e.Key)] = i
	}
	return r
}

// Find returns the entry for key, matching exactly first and then
// case-insensitively. Misses return an *UnknownCategoryError.
func (r *Registry) Find(key string) (model.CategoryEntry, error) {
	if i, ok := r.byKey[key]; ok {
		return r.entries[i], nil
	}
	if i, ok := r.byFold[strings.ToLower(strings.TrimSpace(key))]; ok {
		return r.entries[i], nil
	}
	return model.CategoryEntry{}, &UnknownCategoryError{Key: key}
}

// Lookup is Find with the "Others" entry standing in for unknown and empty keys.
func (r *Registry) Lookup(key string) model.CategoryEntry {
	e, err := r.Find(key)
	if err != nil {
		return r.entries[r.byKey[FallbackCategory]]
	}
	return e
}

// All returns a copy of every entry in display order.
func (r *Registry) All() []model.CategoryEntry {
	out := make([]model.CategoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}
