package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/events"
)

const writeWait = 10 * time.Second

// Broadcaster fans snapshot updates out to connected WebSocket clients.
type Broadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger.Named("ws"),
	}
}

// HandleSnapshot is an events handler for snapshot.refreshed.
func (b *Broadcaster) HandleSnapshot(_ context.Context, e events.Event) error {
	b.Broadcast(e)
	return nil
}

// Broadcast sends v as JSON to every client. Clients that fail the write
// are dropped.
func (b *Broadcaster) Broadcast(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("Failed to marshal broadcast", zap.Error(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if err := b.write(c, msg); err != nil {
			b.logger.Debug("WebSocket write failed, dropping client", zap.Error(err))
			c.Close()
			delete(b.clients, c)
		}
	}
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler accepts WebSocket connections. When initial is non-nil its result
// is sent to each new client before any broadcast.
func (b *Broadcaster) Handler(initial func() interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}

		b.mu.Lock()
		if initial != nil {
			if msg, err := json.Marshal(initial()); err == nil {
				if err := b.write(conn, msg); err != nil {
					b.mu.Unlock()
					conn.Close()
					return
				}
			}
		}
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// Clients only listen; the read loop detects disconnects.
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		c.Close()
		delete(b.clients, c)
	}
}

func (b *Broadcaster) write(c *websocket.Conn, msg []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, msg)
}
