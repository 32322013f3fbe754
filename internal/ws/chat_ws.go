package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"linkup-service/internal/auth"
	"linkup-service/internal/events"
	"linkup-service/internal/models"
	"linkup-service/internal/observability"
	"linkup-service/internal/policy"
	"linkup-service/internal/repositories"
)

// ChatWebSocketHandler runs one chat session per connection.
//
// The session moves Connecting -> Joined -> Closed. Access is re-checked
// against the follow graph on every inbound frame, so an unfollow during an
// open session closes it on the next message. Messages are persisted before
// they are broadcast; a failed persist never reaches the fan-out group.
type ChatWebSocketHandler struct {
	hub         *Hub
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	followRepo  repositories.FollowRepository
	tokens      *auth.TokenManager
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, followRepo repositories.FollowRepository, tokens *auth.TokenManager) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		hub:         hub,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		tokens:      tokens,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Message string `json:"message"`
}

// Handle authenticates the caller, checks the access policy and joins the
// room's fan-out group. Rejections happen before the upgrade; after it, the
// only failure signal to the client is connection closure.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	ctx, span := otel.Tracer("linkup-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	userID, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	room, err := h.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	allowed, err := policy.CanParticipate(ctx, h.followRepo, room, userID)
	if err != nil || !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	group := room.RoomName()
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          ipFromRequest(c.Request),
		RequestID:   requestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Join(group, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, "ws_connect", group, info, "")

	// The request context is canceled when this handler returns; the session
	// outlives it but keeps its trace values.
	go h.readLoop(context.WithoutCancel(ctx), conn, room, group, info)
}

// readLoop processes inbound frames strictly sequentially for the
// connection. Other sessions in the same room run concurrently; ordering
// across connections is whatever the fan-out group provides.
func (h *ChatWebSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, room models.ChatRoom, group string, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.Leave(group, conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(context.Background(), "ws_disconnect", group, info, closeReason)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			closeReason = "malformed frame"
			return
		}

		// The follow edge may have been removed since the last frame.
		allowed, err := policy.CanParticipate(ctx, h.followRepo, room, info.UserID)
		if err != nil || !allowed {
			closeReason = "access revoked"
			return
		}

		msg, err := h.messageRepo.Create(ctx, room.ID, info.UserID, frame.Message, nil, nil, nil)
		if err != nil {
			closeReason = "persist failed"
			return
		}
		_ = h.chatRepo.TouchRoom(ctx, room.ID)

		h.hub.Publish(group, models.ChatEvent{Message: &msg})
	}
}

func (h *ChatWebSocketHandler) publishLifecycle(ctx context.Context, event, group string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"group":       group,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}
	_ = events.Publish(ctx, "ws_events.chats",
		events.NewEnvelope("ws_events", event, payload),
		events.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
