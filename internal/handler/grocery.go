package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

type GroceryHandler struct {
	manager *grocery.Manager
	logger  *slog.Logger
}

func NewGroceryHandler(m *grocery.Manager, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{manager: m, logger: logger}
}

type groceryItemRequest struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
	Category string `json:"category"`
	IsBought bool   `json:"is_bought"`
}

// toItem converts the request body, defaulting a missing quantity to 1.
func (req groceryItemRequest) toItem() model.GroceryItem {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	return model.GroceryItem{
		ID:       req.ID,
		Name:     req.Name,
		Quantity: qty,
		Category: req.Category,
		IsBought: req.IsBought,
	}
}

func decodeItem(r *http.Request) (groceryItemRequest, error) {
	var req groceryItemRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func (h *GroceryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Search(r.URL.Query().Get("q")))
}

func (h *GroceryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, ok := h.manager.Get(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeItem(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.manager.Add(r.Context(), req.toItem())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem replaces the record at the path id. A quantity left out of the
// body keeps the stored value.
func (h *GroceryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	req, err := decodeItem(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	current, ok := h.manager.Get(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "item not found")
		return
	}
	if req.Quantity == nil {
		req.Quantity = &current.Quantity
	}
	req.ID = id

	item, err := h.manager.Update(r.Context(), req.toItem())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.manager.ToggleBought(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.manager.DeleteWithUndo(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": item, "undo": true})
}

func (h *GroceryHandler) UndoDelete(w http.ResponseWriter, r *http.Request) {
	item, restored, err := h.manager.UndoDelete(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := map[string]any{"restored": restored}
	if restored {
		resp["item"] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReturnedItem accepts the result of an add or edit form. A body whose id
// matches a stored item updates it; any other id is added under that id. A
// body without an id is rejected with 400, so a retried request can never
// add the item twice. New items without a client id go to POST /api/items.
func (h *GroceryHandler) ReturnedItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeItem(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.manager.HandleReturnedItem(r.Context(), req.toItem())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
