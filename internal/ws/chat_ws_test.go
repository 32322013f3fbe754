package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkup-service/internal/auth"
	"linkup-service/internal/mocks"
	"linkup-service/internal/models"
)

func newSessionTestServer(t *testing.T, chatRepo *mocks.ChatRepositoryMock, messageRepo *mocks.MessageRepositoryMock, followRepo *mocks.FollowRepositoryMock) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewChatWebSocketHandler(NewHub(), chatRepo, messageRepo, followRepo, tokens)

	r := gin.New()
	r.GET("/ws/chat/:room_id", handler.Handle)
	srv := httptest.NewServer(r)

	token, err := tokens.Issue(1)
	require.NoError(t, err)
	return srv, token
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestSessionPersistsThenBroadcasts(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	srv, token := newSessionTestServer(t, chatRepo, messageRepo, followRepo)
	defer srv.Close()

	room := models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}
	chatRepo.On("GetRoom", mock.Anything, 5).Return(room, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil)
	messageRepo.On("Create", mock.Anything, 5, 1, "hi", (*string)(nil), (*string)(nil), (*string)(nil)).
		Return(models.Message{ID: 7, RoomID: 5, SenderID: 1, Content: "hi"}, nil).Once()
	chatRepo.On("TouchRoom", mock.Anything, 5).Return(nil).Once()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/5?token="+token), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hi"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.ChatEvent
	require.NoError(t, json.Unmarshal(frame, &event))
	require.NotNil(t, event.Message)
	assert.Equal(t, "hi", event.Message.Content)
	assert.Equal(t, 1, event.Message.SenderID)

	messageRepo.AssertExpectations(t)
}

func TestSessionClosesWhenAccessRevoked(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	srv, token := newSessionTestServer(t, chatRepo, messageRepo, followRepo)
	defer srv.Close()

	room := models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}
	chatRepo.On("GetRoom", mock.Anything, 5).Return(room, nil).Once()
	// Connect passes, then the edge disappears before the first frame.
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(true, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(false, nil).Once()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/5?token="+token), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hi"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	followRepo.AssertExpectations(t)
}

func TestConnectRefusedWithoutFollowEdge(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	srv, token := newSessionTestServer(t, chatRepo, new(mocks.MessageRepositoryMock), followRepo)
	defer srv.Close()

	room := models.ChatRoom{ID: 5, User1ID: 1, User2ID: 2}
	chatRepo.On("GetRoom", mock.Anything, 5).Return(room, nil).Once()
	followRepo.On("EitherFollows", mock.Anything, 1, 2).Return(false, nil).Once()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/5?token="+token), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, 403, resp.StatusCode)
}

func TestConnectRefusedWithBadToken(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	srv, _ := newSessionTestServer(t, chatRepo, new(mocks.MessageRepositoryMock), new(mocks.FollowRepositoryMock))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/chat/5?token=garbage"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
	chatRepo.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
}
