package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/chestno/chestno-api/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cookie auth happens before the upgrade; cross-origin dashboards
	// are allowed to subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans scan events out to dashboard subscribers, one room per
// organization. Slow consumers are dropped, never waited on.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*client]struct{}
}

type client struct {
	hub   *Hub
	orgID uint
	conn  *websocket.Conn
	send  chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*client]struct{})}
}

// Subscribe upgrades the request and attaches it to the organization room.
func (h *Hub) Subscribe(orgID uint, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{
		hub:   h,
		orgID: orgID,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
	h.add(c)
	go c.writePump()
	go c.readPump()
	return nil
}

// Broadcast sends payload to every subscriber of the organization.
func (h *Hub) Broadcast(orgID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warnw("ws_broadcast_marshal_failed", "org_id", orgID, "error", err)
		return
	}

	h.mu.RLock()
	room := h.rooms[orgID]
	stale := make([]*client, 0)
	for c := range room {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(c)
	}
}

// Subscribers counts current connections for an organization.
func (h *Hub) Subscribers(orgID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orgID])
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.orgID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.orgID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.orgID]
	if ok {
		if _, present := room[c]; present {
			delete(room, c)
			close(c.send)
			if len(room) == 0 {
				delete(h.rooms, c.orgID)
			}
		}
	}
	h.mu.Unlock()
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// The feed is one-way; inbound frames only keep the connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
