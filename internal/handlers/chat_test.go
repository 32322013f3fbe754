package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkup-service/internal/mocks"
	"linkup-service/internal/models"
	"linkup-service/internal/repositories"
	"linkup-service/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/chats", handler.ListRooms)
	r.POST("/chats", handler.CreateRoom)
	r.GET("/chats/:room_id", handler.GetRoom)
	r.GET("/chats/:room_id/messages", handler.ListMessages)
	r.POST("/chats/:room_id/messages", handler.PostMessage)
	r.POST("/chats/:room_id/read", handler.MarkRead)
	return r
}

func newChatHandlerForTest(chatRepo *mocks.ChatRepositoryMock, messageRepo *mocks.MessageRepositoryMock, followRepo *mocks.FollowRepositoryMock, userRepo *mocks.UserRepositoryMock) *ChatHandler {
	return NewChatHandler(chatRepo, messageRepo, followRepo, userRepo, ws.NewHub())
}

func TestListRoomsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, new(mocks.MessageRepositoryMock), new(mocks.FollowRepositoryMock), userRepo)
	router := setupChatRouter(handler)

	chatRepo.On("ListRoomsForUser", mock.Anything, 1).Return([]models.ChatRoom{{ID: 3, User1ID: 1, User2ID: 2}}, nil).Once()
	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateRoomRequiresFollowEdge(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, new(mocks.MessageRepositoryMock), followRepo, userRepo)
	router := setupChatRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	chatRepo.AssertNotCalled(t, "CreateOrGetRoom", mock.Anything, mock.Anything, mock.Anything)
	followRepo.AssertExpectations(t)
}

func TestCreateRoomSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, new(mocks.MessageRepositoryMock), followRepo, userRepo)
	router := setupChatRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()
	chatRepo.On("CreateOrGetRoom", mock.Anything, 1, 2).Return(models.ChatRoom{ID: 10, User1ID: 1, User2ID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RoomSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 10, resp.ID)
	assert.Equal(t, 2, resp.OtherUser.ID)
	chatRepo.AssertExpectations(t)
}

func TestCreateRoomWithSelfRejected(t *testing.T) {
	handler := newChatHandlerForTest(new(mocks.ChatRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.FollowRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, new(mocks.MessageRepositoryMock), new(mocks.FollowRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 44).Return(models.ChatRoom{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/44", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestGetRoomNonParticipantForbidden(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, new(mocks.MessageRepositoryMock), followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	// Caller 1 is not in the room; the policy never consults follow edges.
	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 2, User2ID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	followRepo.AssertNotCalled(t, "EitherFollows", mock.Anything, mock.Anything, mock.Anything)
}

func TestListMessagesPaginated(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, messageRepo, followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()
	messageRepo.On("ListForRoom", mock.Anything, 5, 2).Return([]models.Message{{ID: 7, RoomID: 5, SenderID: 1}}, 80, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/messages?page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp paginated
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 80, resp.Count)
	assert.Equal(t, repositories.MessagePageSize, resp.PageSize)
	messageRepo.AssertExpectations(t)
}

func TestPostMessagePersists(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, messageRepo, followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()
	messageRepo.On("Create", mock.Anything, 5, 1, "hi", (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(models.Message{ID: 7, RoomID: 5, SenderID: 1, Content: "hi"}, nil).Once()
	chatRepo.On("TouchRoom", mock.Anything, 5).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
	chatRepo.AssertExpectations(t)
}

func TestPostMessageEmptyPayloadRejected(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, messageRepo, followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageAccessRevoked(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, messageRepo, followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkRoomRead(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := newChatHandlerForTest(chatRepo, messageRepo, followRepo, new(mocks.UserRepositoryMock))
	router := setupChatRouter(handler)

	chatRepo.On("GetRoom", mock.Anything, 5).Return(models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()
	messageRepo.On("MarkRoomRead", mock.Anything, 5, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}
