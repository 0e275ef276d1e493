package utility

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// RefreshMessage tells dashboards to reload a topic.
type RefreshMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Hub holds the active dashboard connections and fans out refresh messages.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Allow CORS for development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket Client Connected")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket Client Disconnected")
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a REFRESH for topic to every client, dropping those that fail.
func (h *Hub) Publish(topic string) {
	msg, err := json.Marshal(RefreshMessage{Type: "REFRESH", Topic: topic})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Error().Err(err).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ServeWS upgrades the request and keeps the connection until the client leaves.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}
	h.Register(conn)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
