package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/models"
	"linkup-service/internal/policy"
	"linkup-service/internal/repositories"
	"linkup-service/internal/ws"
)

// ChatHandler serves the chat REST surface: room listing and creation, room
// detail, message history, posting and read receipts. Room access is gated by
// the follow graph through the same policy the websocket path uses.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	followRepo  repositories.FollowRepository
	userRepo    repositories.UserRepository
	hub         *ws.Hub
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, followRepo repositories.FollowRepository, userRepo repositories.UserRepository, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// ListRooms returns the caller's rooms, most recently active first, with the
// counterpart's profile attached.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID := currentUserID(c)

	rooms, err := h.chatRepo.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list chats"})
		return
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		other, err := h.userRepo.GetByID(c.Request.Context(), room.OtherParticipant(userID))
		if err != nil {
			continue
		}
		summaries = append(summaries, models.RoomSummary{
			ID:        room.ID,
			OtherUser: other,
			CreatedAt: room.CreatedAt,
			UpdatedAt: room.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": summaries})
}

// CreateRoom opens (or returns) the room with user_id. Requires a follow edge
// in at least one direction between the two users.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	userID := currentUserID(c)
	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	other, err := h.userRepo.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up user"})
		return
	}

	connected, err := h.followRepo.EitherFollows(c.Request.Context(), userID, other.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check follow status"})
		return
	}
	if !connected {
		c.JSON(http.StatusForbidden, gin.H{"error": "you must follow each other to chat"})
		return
	}

	room, err := h.chatRepo.CreateOrGetRoom(c.Request.Context(), userID, other.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	c.JSON(http.StatusOK, models.RoomSummary{
		ID:        room.ID,
		OtherUser: other,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	})
}

// GetRoom returns one room the caller participates in.
func (h *ChatHandler) GetRoom(c *gin.Context) {
	room, ok := h.roomForCaller(c)
	if !ok {
		return
	}

	other, err := h.userRepo.GetByID(c.Request.Context(), room.OtherParticipant(currentUserID(c)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up user"})
		return
	}
	c.JSON(http.StatusOK, models.RoomSummary{
		ID:        room.ID,
		OtherUser: other,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	})
}

// ListMessages returns one page of the room's history, newest first.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	room, ok := h.roomForCaller(c)
	if !ok {
		return
	}
	page := pageFromQuery(c)

	messages, total, err := h.messageRepo.ListForRoom(c.Request.Context(), room.ID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}
	c.JSON(http.StatusOK, paginated{
		Count:    total,
		Page:     page,
		PageSize: repositories.MessagePageSize,
		Results:  messages,
	})
}

// PostMessage persists a message over REST and fans it out to any websocket
// subscribers of the room. Text may be blank only when a file is attached.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	room, ok := h.roomForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Content  string  `json:"content"`
		FileData *string `json:"file_data"`
		FileType *string `json:"file_type"`
		FileName *string `json:"file_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft := models.Message{Content: req.Content, FileData: req.FileData}
	if !draft.HasPayload() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must have content or a file"})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), room.ID, currentUserID(c), req.Content, req.FileData, req.FileType, req.FileName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}
	_ = h.chatRepo.TouchRoom(c.Request.Context(), room.ID)

	h.hub.Publish(room.RoomName(), models.ChatEvent{Message: &msg})
	c.JSON(http.StatusCreated, msg)
}

// MarkRead flags the counterpart's messages in the room as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	room, ok := h.roomForCaller(c)
	if !ok {
		return
	}

	if err := h.messageRepo.MarkRoomRead(c.Request.Context(), room.ID, currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// roomForCaller resolves the :room_id parameter and enforces the access
// policy. It writes the error response itself and reports ok=false when the
// caller may not touch the room.
func (h *ChatHandler) roomForCaller(c *gin.Context) (models.ChatRoom, bool) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return models.ChatRoom{}, false
	}

	room, err := h.chatRepo.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat room not found"})
			return models.ChatRoom{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up room"})
		return models.ChatRoom{}, false
	}

	allowed, err := policy.CanParticipate(c.Request.Context(), h.followRepo, room, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check room access"})
		return models.ChatRoom{}, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this chat"})
		return models.ChatRoom{}, false
	}
	return room, true
}
