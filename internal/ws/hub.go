package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"linkup-service/internal/events"
	"linkup-service/internal/logger"
	"linkup-service/internal/observability"
)

// client is one group member. Its mutex serializes writes to the connection:
// gorilla/websocket allows only a single concurrent writer, and publishes
// arrive from many goroutines (other sessions, REST handlers).
type client struct {
	mu   sync.Mutex
	info ConnInfo
}

func (c *client) write(conn *websocket.Conn, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, body)
}

func (c *client) close(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn.Close()
}

// Hub is the in-process fan-out primitive. Groups are keyed by the canonical
// room key ("chat_<min>_<max>"); every payload published to a group is
// delivered to each current member, the publisher included.
type Hub struct {
	groups map[string]map[*websocket.Conn]*client
	mu     sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[*websocket.Conn]*client),
	}
}

// Join registers a connection as a member of the group.
func (h *Hub) Join(group string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[*websocket.Conn]*client)
	}
	h.groups[group][conn] = &client{info: info}
}

// Leave removes a connection from the group. Idempotent: leaving a group the
// connection is not in is a no-op.
func (h *Hub) Leave(group string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[group]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Members reports the current group size.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Publish sends the payload to every current member of the group. A failed
// write evicts that connection; delivery to the remaining members continues.
func (h *Hub) Publish(group string, payload interface{}) {
	h.mu.RLock()
	members := make(map[*websocket.Conn]*client, len(h.groups[group]))
	for conn, cl := range h.groups[group] {
		members[conn] = cl
	}
	h.mu.RUnlock()

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.WithError(err).Error("hub payload marshal failed")
		return
	}

	for conn, cl := range members {
		if err := cl.write(conn, body); err != nil {
			logger.Log.WithError(err).Warn("websocket write failed, evicting connection")
			cl.close(conn)
			h.Leave(group, conn)
			h.publishWSError(group, cl.info, err)
		}
	}
}

func (h *Hub) publishWSError(group string, info ConnInfo, cause error) {
	observability.IncWSEvent("ws_error")
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"group":       group,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      cause.Error(),
		},
		"identity": map[string]interface{}{
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}
	_ = events.Publish(context.Background(), "ws_events.chats",
		events.NewEnvelope("ws_events", "ws_error", payload),
		events.BuildHeaders(info.RequestID, info.TraceID))
}
