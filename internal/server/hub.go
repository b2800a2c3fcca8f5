package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Served on localhost only
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Message types sent to websocket clients.
const (
	MessageConnected      = "connected"
	MessageHistoryChanged = "history_changed"
)

// Message is the JSON envelope sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// HistoryPayload is the data of a history_changed message.
type HistoryPayload struct {
	Colors []colour.Values `json:"colors"`
}

// NewHistoryPayload expands entries into every format.
func NewHistoryPayload(entries []colour.Hex) HistoryPayload {
	p := HistoryPayload{Colors: make([]colour.Values, len(entries))}
	for i, e := range entries {
		p.Colors[i] = colour.ValuesOf(e)
	}
	return p
}

// ConnectedPayload is the data of the connected message: the history plus
// whether the pick action is usable, so clients can disable it up front.
type ConnectedPayload struct {
	HistoryPayload
	StatusPayload
}

// Hub manages websocket connections and broadcasts history changes.
type Hub struct {
	logger  hclog.Logger
	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger hclog.Logger) *Hub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Hub{
		logger:  logger.Named("hub"),
		clients: make(map[*client]bool),
	}
}

// OnHistoryChanged implements history.Observer.
func (h *Hub) OnHistoryChanged(entries []colour.Hex) {
	data, err := json.Marshal(Message{Type: MessageHistoryChanged, Data: NewHistoryPayload(entries)})
	if err != nil {
		h.logger.Error("failed to marshal history", "error", err)
		return
	}
	h.broadcast(data)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.trySend(c, data)
	}
}

// trySend sends without blocking. A client whose buffer is full is dropped.
func (h *Hub) trySend(c *client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and sends the connected message first.
func (h *Hub) ServeWS(initial func() ConnectedPayload) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}

		if data, err := json.Marshal(Message{Type: MessageConnected, Data: initial()}); err == nil {
			c.send <- data
		}
		h.addClient(c)

		go c.writePump()
		go c.readPump()
	}
}

// readPump only detects disconnects; clients do not send messages.
func (c *client) readPump() {
	defer c.hub.removeClient(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
