package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/villegasmiguelangel268-maker/listify/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

func (h *BackupHandler) writeBackupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backup.ErrDisabled):
		writeMessage(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, backup.ErrInProgress):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, backup.ErrDecrypt):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, h.logger, err)
	}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// List returns the snapshots stored in the bucket.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	objects, err := h.manager.List(r.Context())
	if err != nil {
		h.writeBackupError(w, err)
		return
	}
	if objects == nil {
		objects = []backup.Object{}
	}
	writeJSON(w, http.StatusOK, objects)
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.writeBackupError(w, err)
		return
	}
	h.logger.Info("backup created", "key", res.Key, "items", res.ItemCount)
	writeJSON(w, http.StatusCreated, res)
}

type restoreRequest struct {
	Key string `json:"key"`
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		writeMessage(w, http.StatusBadRequest, "key is required")
		return
	}

	n, err := h.manager.Restore(r.Context(), req.Key)
	if err != nil {
		h.writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": req.Key, "restored": n})
}
