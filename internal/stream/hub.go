// Package stream fans live measurement payloads out to WebSocket viewers.
// The feed is one-way: a slow client is disconnected rather than allowed to
// stall the simulation loop.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"inductionlab/sim/internal/logging"
)

const (
	sendBuffer   = 256
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected viewers and broadcasts measurement payloads to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	log     *logging.Logger
}

// NewHub returns an empty hub logging through the supplied logger.
func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.L()
	}
	return &Hub{clients: make(map[*client]bool), log: log}
}

// ClientCount reports how many viewers are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues the payload to every connected viewer, dropping clients
// whose send buffer is full.
func (h *Hub) Broadcast(payload []byte) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			//1.- Backpressured viewer: cut it loose instead of blocking the loop.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// ServeHTTP implements http.Handler by delegating to ServeWS.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ServeWS(w, r)
}

// ServeWS upgrades the request and registers the viewer with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Debug("viewer connected", logging.String("remote", r.RemoteAddr))

	//1.- Reader goroutine: the feed is one-way, so inbound frames are drained
	// purely to detect disconnects.
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	//2.- Writer goroutine: forward queued payloads and keepalive pings.
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer func() {
			ticker.Stop()
			c.conn.Close()
		}()
		for {
			select {
			case payload, ok := <-c.send:
				if !ok {
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
