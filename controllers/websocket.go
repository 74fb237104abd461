package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/middlewares"
	"github.com/amal-sh/Blockchain-supplychain/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is how many messages a slow client may fall behind before it is dropped.
	sendBuffer = 16
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what the hub pushes to every connected client.
type Message struct {
	Type    string               `json:"type"`
	Message string               `json:"message,omitempty"`
	Data    models.SensorReading `json:"data"`
	Alerts  []models.Alert       `json:"alerts,omitempty"`
}

const (
	MessageSensorUpdate = "sensor_update"
	MessageAlert        = "alert"
)

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub tracks websocket clients and fans readings out to them. Broadcasting only
// queues messages; each client has its own writer goroutine.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[*websocket.Conn]*client), logger: logger}
}

// HandleWebSocket upgrades the request and keeps the connection until the client leaves.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userID := c.GetString(middlewares.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	go h.writePump(cl)
	defer h.remove(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// NotifyReading broadcasts a reading, and a separate alert message when thresholds were breached.
func (h *Hub) NotifyReading(reading models.SensorReading, alerts []models.Alert) {
	h.broadcast(Message{Type: MessageSensorUpdate, Data: reading})
	if len(alerts) > 0 {
		h.broadcast(Message{Type: MessageAlert, Message: "Abnormal data detected!", Data: reading, Alerts: alerts})
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, cl := range h.clients {
		select {
		case cl.send <- payload:
		default:
			h.logger.Warn("dropping slow websocket client", "user_id", cl.userID)
			delete(h.clients, conn)
			close(cl.send)
		}
	}
	metrics.SetWebsocketClients(len(h.clients))
}

// writePump is the only writer on cl.conn. It exits when cl.send is closed or a write fails.
func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()
	for payload := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("websocket write failed", "user_id", cl.userID, "error", err)
			h.remove(cl)
			return
		}
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl.conn] = cl
	metrics.SetWebsocketClients(len(h.clients))
}

// remove unregisters cl once; closing send stops its writer, which closes the connection.
func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[cl.conn]; ok && existing == cl {
		delete(h.clients, cl.conn)
		close(cl.send)
	}
	metrics.SetWebsocketClients(len(h.clients))
}
