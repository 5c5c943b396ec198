package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandlerOptions tunes the upgrade. With no OriginPatterns any origin may
// connect, which suits a list served on localhost or a home LAN.
type HandlerOptions struct {
	OriginPatterns []string
}

// Handler upgrades GET /ws and streams list snapshots from hub until the
// browser goes away.
func Handler(hub *Hub, opts HandlerOptions, logger *slog.Logger) http.HandlerFunc {
	accept := &ws.AcceptOptions{
		OriginPatterns:     opts.OriginPatterns,
		InsecureSkipVerify: len(opts.OriginPatterns) == 0,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, accept)
		if err != nil {
			logger.Warn("websocket upgrade rejected", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		sub := newSubscriber(hub, conn, r.RemoteAddr)
		logger.Debug("live view attached", "remote", sub.remote, "subscribers", hub.ClientCount()+1)
		sub.serve(r.Context())
		logger.Debug("live view detached", "remote", sub.remote)
	}
}
