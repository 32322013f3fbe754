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
)

func setupSocialRouter(handler *SocialHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/social/follow", handler.Follow)
	r.POST("/social/follow/respond", handler.RespondToRequest)
	r.POST("/social/unfollow", handler.Unfollow)
	r.GET("/social/follow-status/:user_id", handler.FollowStatus)
	r.GET("/social/follow-requests", handler.ListPendingRequests)
	r.GET("/social/following/:user_id", handler.Following)
	r.GET("/social/followers/:user_id", handler.Followers)
	return r
}

func TestFollowCreatesRequestAndNotifies(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	notificationRepo := new(mocks.NotificationRepositoryMock)
	handler := NewSocialHandler(userRepo, followRepo, notificationRepo)
	router := setupSocialRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	followRepo.On("CreateRequest", mock.Anything, 1, 2).Return(models.FollowRequest{ID: 9, FromUserID: 1, ToUserID: 2}, nil).Once()
	userRepo.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Liddell"}, nil).Once()
	notificationRepo.On("Create", mock.Anything, 2, "New Follow Request", "Alice Liddell wants to follow you", models.NotificationFollowRequest, 9).
		Return(models.Notification{ID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "follow_request_sent", resp["status"])

	userRepo.AssertExpectations(t)
	followRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestFollowSelfRejected(t *testing.T) {
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), new(mocks.FollowRepositoryMock), new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/social/follow", bytes.NewBufferString(`{"user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowUnknownTarget(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewSocialHandler(userRepo, new(mocks.FollowRepositoryMock), new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	userRepo.On("GetByID", mock.Anything, 99).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow", bytes.NewBufferString(`{"user_id":99}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestFollowDuplicatePendingConflict(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	handler := NewSocialHandler(userRepo, followRepo, new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	followRepo.On("CreateRequest", mock.Anything, 1, 2).Return(models.FollowRequest{}, repositories.ErrRequestPending).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
	followRepo.AssertExpectations(t)
}

func TestAcceptRequestCreatesEdge(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	notificationRepo := new(mocks.NotificationRepositoryMock)
	handler := NewSocialHandler(userRepo, followRepo, notificationRepo)
	router := setupSocialRouter(handler)

	followRepo.On("GetPendingRequest", mock.Anything, 9, 1).Return(models.FollowRequest{ID: 9, FromUserID: 2, ToUserID: 1}, nil).Once()
	userRepo.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil).Once()
	followRepo.On("CreateEdge", mock.Anything, 2, 1).Return(nil).Once()
	followRepo.On("SetRequestStatus", mock.Anything, 9, models.RequestStatusAccepted).Return(nil).Once()
	notificationRepo.On("Create", mock.Anything, 2, "Follow Request Accepted", "alice accepted your follow request", models.NotificationFollowAccepted, 9).
		Return(models.Notification{ID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow/respond", bytes.NewBufferString(`{"request_id":9,"action":"accept"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "accepted", resp["status"])

	followRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

func TestDeclineRequestCreatesNoEdge(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	followRepo := new(mocks.FollowRepositoryMock)
	notificationRepo := new(mocks.NotificationRepositoryMock)
	handler := NewSocialHandler(userRepo, followRepo, notificationRepo)
	router := setupSocialRouter(handler)

	followRepo.On("GetPendingRequest", mock.Anything, 9, 1).Return(models.FollowRequest{ID: 9, FromUserID: 2, ToUserID: 1}, nil).Once()
	userRepo.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil).Once()
	followRepo.On("SetRequestStatus", mock.Anything, 9, models.RequestStatusDeclined).Return(nil).Once()
	notificationRepo.On("Create", mock.Anything, 2, "Follow Request Declined", "alice declined your follow request", models.NotificationFollowDeclined, 9).
		Return(models.Notification{ID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow/respond", bytes.NewBufferString(`{"request_id":9,"action":"decline"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	followRepo.AssertNotCalled(t, "CreateEdge", mock.Anything, mock.Anything, mock.Anything)
	followRepo.AssertExpectations(t)
}

func TestRespondUnknownRequest(t *testing.T) {
	followRepo := new(mocks.FollowRepositoryMock)
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), followRepo, new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	followRepo.On("GetPendingRequest", mock.Anything, 42, 1).Return(models.FollowRequest{}, repositories.ErrRequestNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/social/follow/respond", bytes.NewBufferString(`{"request_id":42,"action":"accept"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	followRepo.AssertExpectations(t)
}

func TestRespondInvalidAction(t *testing.T) {
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), new(mocks.FollowRepositoryMock), new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/social/follow/respond", bytes.NewBufferString(`{"request_id":9,"action":"maybe"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnfollowIsIdempotent(t *testing.T) {
	followRepo := new(mocks.FollowRepositoryMock)
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), followRepo, new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	followRepo.On("DeleteEdge", mock.Anything, 1, 2).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/social/unfollow", bytes.NewBufferString(`{"user_id":2}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "unfollowed", resp["status"])
	}
	followRepo.AssertExpectations(t)
}

func TestFollowStatusPriority(t *testing.T) {
	tests := []struct {
		name      string
		pending   bool
		following bool
		want      string
	}{
		{"pending wins", true, true, "requested"},
		{"following", false, true, "following"},
		{"none", false, false, "none"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			followRepo := new(mocks.FollowRepositoryMock)
			handler := NewSocialHandler(new(mocks.UserRepositoryMock), followRepo, new(mocks.NotificationRepositoryMock))
			router := setupSocialRouter(handler)

			followRepo.On("HasPendingRequest", mock.Anything, 1, 2).Return(tc.pending, nil).Once()
			if !tc.pending {
				followRepo.On("Follows", mock.Anything, 1, 2).Return(tc.following, nil).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/social/follow-status/2", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.want, resp["status"])
			followRepo.AssertExpectations(t)
		})
	}
}

func TestFollowingPaginates(t *testing.T) {
	followRepo := new(mocks.FollowRepositoryMock)
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), followRepo, new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	followRepo.On("ListFollowing", mock.Anything, 2, 3).Return([]models.User{{ID: 5, Username: "eve"}}, 21, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/social/following/2?page=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp paginated
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 21, resp.Count)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, repositories.PageSize, resp.PageSize)
	followRepo.AssertExpectations(t)
}

func TestListPendingRequests(t *testing.T) {
	followRepo := new(mocks.FollowRepositoryMock)
	handler := NewSocialHandler(new(mocks.UserRepositoryMock), followRepo, new(mocks.NotificationRepositoryMock))
	router := setupSocialRouter(handler)

	followRepo.On("ListPendingRequests", mock.Anything, 1).Return([]models.PendingRequest{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/social/follow-requests", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	followRepo.AssertExpectations(t)
}
