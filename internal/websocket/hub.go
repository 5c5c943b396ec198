package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

const (
	EntityGroceryItems = "grocery_items"
	ActionSnapshot     = "snapshot"
)

// Message is one live-view frame. Items always holds the complete ordered
// list so a client never has to merge deltas.
type Message struct {
	Type   string              `json:"type"`
	Entity string              `json:"entity"`
	Action string              `json:"action"`
	Count  int                 `json:"count"`
	Items  []model.GroceryItem `json:"items"`
}

// NewSnapshot wraps the full item list in a grocery_items_snapshot message.
func NewSnapshot(items []model.GroceryItem) Message {
	if items == nil {
		items = []model.GroceryItem{}
	}
	return Message{
		Type:   EntityGroceryItems + "_" + ActionSnapshot,
		Entity: EntityGroceryItems,
		Action: ActionSnapshot,
		Count:  len(items),
		Items:  items,
	}
}

// Hub fans list snapshots out to every attached Subscriber.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscriber]struct{}
	current func() Message
	logger  *slog.Logger
}

// NewHub creates a Hub. current, when non-nil, produces the snapshot a
// subscriber gets on attach and on refresh.
func NewHub(logger *slog.Logger, current func() Message) *Hub {
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		current: current,
		logger:  logger,
	}
}

// Register attaches s. The current snapshot is queued under the write lock,
// so no broadcast can be ordered ahead of it.
func (h *Hub) Register(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if frame, ok := h.currentFrame(); ok {
		s.offer(frame)
	}
	h.subs[s] = struct{}{}
}

// Unregister detaches s and stops its writer. Calling it twice is harmless.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// Refresh re-sends the current snapshot to s alone.
func (h *Hub) Refresh(s *Subscriber) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.subs[s]; !ok {
		return
	}
	if frame, ok := h.currentFrame(); ok {
		s.offer(frame)
	}
}

// Broadcast hands msg to every subscriber without waiting on any of them.
// A subscriber that has not written its previous frame yet skips straight to
// this one.
func (h *Hub) Broadcast(msg Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if s.offer(frame) {
			h.logger.Debug("superseded unsent snapshot", "remote", s.remote, "count", msg.Count)
		}
	}
}

// ClientCount returns the number of attached subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) currentFrame() ([]byte, bool) {
	if h.current == nil {
		return nil, false
	}
	frame, err := json.Marshal(h.current())
	if err != nil {
		h.logger.Error("marshal snapshot", "error", err)
		return nil, false
	}
	return frame, true
}
