package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// client serialises writes to one connection.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub groups live-feed connections into rooms, one room per media id.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]*client
	log   *logger.ZapLogger
}

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
		log:   log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[roomID][conn] = &client{conn: conn}
	n := len(h.rooms[roomID])
	h.mu.Unlock()

	h.debug("ws register", map[string]any{"room": roomID, "conns": n})
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	conns, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	_, found := conns[conn]
	delete(conns, conn)
	n := len(conns)
	if n == 0 {
		delete(h.rooms, roomID)
	}
	h.mu.Unlock()

	if found {
		conn.Close()
	}
	h.debug("ws unregister", map[string]any{"room": roomID, "conns": n})
}

// RoomSize reports how many connections listen on roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// SendToRoom writes msg to every connection of the room. The hub lock only
// guards the snapshot; a slow connection delays its own room's send, never
// Register or Unregister.
func (h *Hub) SendToRoom(roomID string, msg []byte) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil && h.log != nil {
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "ws send failed",
				Fields:  map[string]any{"room": roomID},
				Error:   err,
			})
		}
	}
}

func (h *Hub) debug(msg string, fields map[string]any) {
	if h.log == nil {
		return
	}
	h.log.Log(logger.LogEntry{Level: "debug", Message: msg, Fields: fields})
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
