package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/villegasmiguelangel268-maker/listify/internal/backup"
	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/handler"
	"github.com/villegasmiguelangel268-maker/listify/internal/middleware"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
	ws "github.com/villegasmiguelangel268-maker/listify/internal/websocket"
)

type Options struct {
	// RateLimit caps mutating requests per client per minute; 0 disables.
	RateLimit int
	// AllowedOrigins restricts cross-origin WebSocket upgrades. Empty allows all.
	AllowedOrigins []string
	// TrustedProxies are the peers allowed to set the client address through
	// forwarding headers.
	TrustedProxies []netip.Prefix
}

type Server struct {
	manager       *grocery.Manager
	hub           *ws.Hub
	groceryH      *handler.GroceryHandler
	categoryH     *handler.CategoryHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	origins       []string
	proxies       []netip.Prefix
	unsubscribe   func()
	started       time.Time
	logger        *slog.Logger
}

// New wires the HTTP surface around mgr. Every live-view change is pushed to
// WebSocket clients until Close is called.
func New(mgr *grocery.Manager, reg *grocery.Registry, backupMgr *backup.Manager, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"), func() ws.Message {
		return ws.NewSnapshot(mgr.Items())
	})
	unsubscribe := mgr.Subscribe(func(items []model.GroceryItem) {
		hub.Broadcast(ws.NewSnapshot(items))
	})

	var limiter *middleware.RateLimiter
	if opts.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(opts.RateLimit, time.Minute)
	}

	return &Server{
		manager:       mgr,
		hub:           hub,
		groceryH:      handler.NewGroceryHandler(mgr, logger.With("component", "grocery")),
		categoryH:     handler.NewCategoryHandler(reg, logger.With("component", "category")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		rateLimiter:   limiter,
		backupManager: backupMgr,
		origins:       opts.AllowedOrigins,
		proxies:       opts.TrustedProxies,
		unsubscribe:   unsubscribe,
		started:       time.Now(),
		logger:        logger,
	}
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the write limiter for cleanup tasks, or nil when
// limiting is disabled.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Close detaches the server from the manager's live view.
func (s *Server) Close() {
	s.unsubscribe()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Items
	mux.HandleFunc("GET /api/items", s.groceryH.ListItems)
	mux.HandleFunc("POST /api/items", s.groceryH.CreateItem)
	mux.HandleFunc("POST /api/items/undo", s.groceryH.UndoDelete)
	mux.HandleFunc("POST /api/items/returned", s.groceryH.ReturnedItem)
	mux.HandleFunc("GET /api/items/{id}", s.groceryH.GetItem)
	mux.HandleFunc("PUT /api/items/{id}", s.groceryH.UpdateItem)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.groceryH.ToggleItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.groceryH.DeleteItem)

	// Categories
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("GET /api/categories/suggest", s.categoryH.Suggest)
	mux.HandleFunc("GET /api/categories/{key}", s.categoryH.Get)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.RunNow)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups/restore", s.backupH.Restore)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, ws.HandlerOptions{OriginPatterns: s.origins}, s.logger.With("component", "websocket")))

	var h http.Handler = mux
	if s.rateLimiter != nil {
		h = middleware.LimitWrites(s.rateLimiter, s.proxies)(h)
	}
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"items":   len(s.manager.Items()),
		"clients": s.hub.ClientCount(),
		"backup":  s.backupManager.Status().State,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}
