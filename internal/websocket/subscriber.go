package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Subscriber is one live-view connection. Every frame carries the whole list,
// so it holds at most one unsent frame: a newer snapshot replaces an older one
// that has not been written yet.
type Subscriber struct {
	hub    *Hub
	conn   *ws.Conn
	remote string

	mu     sync.Mutex
	closed bool
	latest chan []byte
}

func newSubscriber(hub *Hub, conn *ws.Conn, remote string) *Subscriber {
	return &Subscriber{
		hub:    hub,
		conn:   conn,
		remote: remote,
		latest: make(chan []byte, 1),
	}
}

// offer queues frame for writing and reports whether it replaced a frame the
// connection had not picked up yet.
func (s *Subscriber) offer(frame []byte) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case <-s.latest:
		replaced = true
	default:
	}
	s.latest <- frame
	return replaced
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.latest)
	}
}

// serve registers s and moves frames to the connection until either side
// gives up.
func (s *Subscriber) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.hub.Register(s)
	defer s.hub.Unregister(s)

	go func() {
		defer cancel()
		s.listen(ctx)
	}()
	s.pump(ctx)
}

// clientFrame is what a browser may send. Only {"type":"refresh"} means
// anything; everything else is ignored.
type clientFrame struct {
	Type string `json:"type"`
}

// listen keeps control frames flowing and answers refresh requests with a
// fresh snapshot.
func (s *Subscriber) listen(ctx context.Context) {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != ws.MessageText {
			continue
		}
		var f clientFrame
		if json.Unmarshal(data, &f) == nil && f.Type == "refresh" {
			s.hub.Refresh(s)
		}
	}
}

func (s *Subscriber) pump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.latest:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := s.conn.Write(wctx, ws.MessageText, frame)
			cancel()
			if err != nil {
				s.hub.logger.Debug("websocket write", "remote", s.remote, "error", err)
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := s.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
