package handler

import (
	"log/slog"
	"net/http"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

type CategoryHandler struct {
	registry *grocery.Registry
	logger   *slog.Logger
}

func NewCategoryHandler(reg *grocery.Registry, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{registry: reg, logger: logger}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.All())
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Find(r.PathValue("key"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type suggestion struct {
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Entry    *model.CategoryEntry `json:"entry,omitempty"`
}

// Suggest guesses a category for ?name=. An empty category means no keyword
// matched.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	resp := suggestion{Name: name, Category: grocery.Categorize(name)}
	if resp.Category != "" {
		entry := h.registry.Lookup(resp.Category)
		resp.Entry = &entry
	}
	writeJSON(w, http.StatusOK, resp)
}
