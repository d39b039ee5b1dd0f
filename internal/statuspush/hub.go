// Package statuspush broadcasts live quick-detect status transitions to
// connected browsers over WebSocket, grounded on iluha78-FD's
// internal/api/ws.Hub (register/unregister/broadcast channels driven by
// one goroutine, client send buffers, disconnect-on-full-buffer).
package statuspush

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/irislab/irisgo/internal/capture"
	"github.com/irislab/irisgo/internal/logger"
	"github.com/irislab/irisgo/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans status events out to every connected debug/operator client.
// One controller session runs at a time, so there is no per-session
// filter to apply before broadcasting.
type Hub struct {
	log        logger.Logger
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run drives the hub's event loop; call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.StatusPushConnections.Inc()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			metrics.StatusPushConnections.Dec()

		case message := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, c)
					close(c.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a status transition to every connected client.
func (h *Hub) Broadcast(e capture.StatusEvent) {
	data, err := json.Marshal(wireStatus{Status: e.Status.String(), Phase: e.Phase.String()})
	if err != nil {
		h.log.Error("statuspush", err, nil)
		return
	}
	h.broadcast <- data
}

type wireStatus struct {
	Status string `json:"status"`
	Phase  string `json:"phase"`
}

// HandleWS upgrades a gin request to a WebSocket and registers the
// client with the hub.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("statuspush", err, nil)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, 32)}
	h.register <- cl

	go cl.writePump()
	go cl.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
