package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is how many messages a client may fall behind before it is
	// dropped.
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

type client struct {
	id    string
	conn  *websocket.Conn
	sendC chan []byte
}

// Hub pushes every view commit to the connected websocket clients. Each
// client is written to by its own goroutine, so a slow client never holds up
// a commit.
type Hub struct {
	logger   *slog.Logger
	metrics  *Metrics
	upgrader websocket.Upgrader
	snapshot func() any

	mu      sync.Mutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger, metrics *Metrics, snapshot func() any) *Hub {
	return &Hub{
		logger:   logger,
		metrics:  metrics,
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the request, sends the current view state and keeps the
// connection until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade websocket", "package", "devtools", "error", err)
		return
	}

	c := &client{
		id:    uuid.NewString(),
		conn:  conn,
		sendC: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	data, err := json.Marshal(h.snapshot())
	if err == nil {
		c.sendC <- data
		h.clients[c.id] = c
		h.metrics.clients.Inc()
	}
	h.mu.Unlock()
	if err != nil {
		h.logger.Warn("Failed to encode view state", "package", "devtools", "error", err)
		conn.Close()
		return
	}

	h.logger.Debug("Websocket client connected", "package", "devtools", "client", c.id)

	go h.writePump(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(c.id)
	h.logger.Debug("Websocket client disconnected", "package", "devtools", "client", c.id)
}

func (h *Hub) writePump(c *client) {
	for data := range c.sendC {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("Failed to write to websocket client", "package", "devtools", "client", c.id, "error", err)
			c.conn.Close()
			return
		}
	}
}

// Broadcast queues v for every client. Clients whose queue is full are
// dropped.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Warn("Failed to encode view state", "package", "devtools", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		select {
		case c.sendC <- data:
		default:
			h.logger.Debug("Dropping slow websocket client", "package", "devtools", "client", id)
			h.remove(c)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.remove(c)
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		h.remove(c)
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(c *client) {
	delete(h.clients, c.id)
	close(c.sendC)
	h.metrics.clients.Dec()
	c.conn.Close()
}
