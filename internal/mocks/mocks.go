package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"linkup-service/internal/models"
	"linkup-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, userID int, firstName, lastName, username string) (models.User, error) {
	args := m.Called(ctx, userID, firstName, lastName, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Search(ctx context.Context, query string, excludeUserID int) ([]models.User, error) {
	args := m.Called(ctx, query, excludeUserID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type FollowRepositoryMock struct {
	mock.Mock
}

func (m *FollowRepositoryMock) CreateRequest(ctx context.Context, fromUserID, toUserID int) (models.FollowRequest, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	var req models.FollowRequest
	if val := args.Get(0); val != nil {
		req = val.(models.FollowRequest)
	}
	return req, args.Error(1)
}

func (m *FollowRepositoryMock) GetPendingRequest(ctx context.Context, requestID, toUserID int) (models.FollowRequest, error) {
	args := m.Called(ctx, requestID, toUserID)
	var req models.FollowRequest
	if val := args.Get(0); val != nil {
		req = val.(models.FollowRequest)
	}
	return req, args.Error(1)
}

func (m *FollowRepositoryMock) SetRequestStatus(ctx context.Context, requestID int, status string) error {
	args := m.Called(ctx, requestID, status)
	return args.Error(0)
}

func (m *FollowRepositoryMock) HasPendingRequest(ctx context.Context, fromUserID, toUserID int) (bool, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepositoryMock) ListPendingRequests(ctx context.Context, toUserID int) ([]models.PendingRequest, error) {
	args := m.Called(ctx, toUserID)
	var requests []models.PendingRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.PendingRequest)
	}
	return requests, args.Error(1)
}

func (m *FollowRepositoryMock) CreateEdge(ctx context.Context, followerID, followeeID int) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *FollowRepositoryMock) DeleteEdge(ctx context.Context, followerID, followeeID int) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *FollowRepositoryMock) Follows(ctx context.Context, followerID, followeeID int) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepositoryMock) EitherFollows(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepositoryMock) ListFollowing(ctx context.Context, userID, page int) ([]models.User, int, error) {
	args := m.Called(ctx, userID, page)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Int(1), args.Error(2)
}

func (m *FollowRepositoryMock) ListFollowers(ctx context.Context, userID, page int) ([]models.User, int, error) {
	args := m.Called(ctx, userID, page)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Int(1), args.Error(2)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, userID int, title, message, notificationType string, relatedID int) (models.Notification, error) {
	args := m.Called(ctx, userID, title, message, notificationType, relatedID)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var notifications []models.Notification
	if val := args.Get(0); val != nil {
		notifications = val.([]models.Notification)
	}
	return notifications, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID, userID int) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateOrGetRoom(ctx context.Context, userID, otherID int) (models.ChatRoom, error) {
	args := m.Called(ctx, userID, otherID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoom, error) {
	args := m.Called(ctx, userID)
	var rooms []models.ChatRoom
	if val := args.Get(0); val != nil {
		rooms = val.([]models.ChatRoom)
	}
	return rooms, args.Error(1)
}

func (m *ChatRepositoryMock) TouchRoom(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, roomID, senderID int, content string, fileData, fileType, fileName *string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content, fileData, fileType, fileName)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListForRoom(ctx context.Context, roomID, page int) ([]models.Message, int, error) {
	args := m.Called(ctx, roomID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

func (m *MessageRepositoryMock) MarkRoomRead(ctx context.Context, roomID, readerID int) error {
	args := m.Called(ctx, roomID, readerID)
	return args.Error(0)
}

type JobRepositoryMock struct {
	mock.Mock
}

func (m *JobRepositoryMock) CreatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error) {
	args := m.Called(ctx, posting)
	var created models.JobPosting
	if val := args.Get(0); val != nil {
		created = val.(models.JobPosting)
	}
	return created, args.Error(1)
}

func (m *JobRepositoryMock) GetPosting(ctx context.Context, jobID int) (models.JobPosting, error) {
	args := m.Called(ctx, jobID)
	var posting models.JobPosting
	if val := args.Get(0); val != nil {
		posting = val.(models.JobPosting)
	}
	return posting, args.Error(1)
}

func (m *JobRepositoryMock) UpdatePosting(ctx context.Context, posting models.JobPosting) (models.JobPosting, error) {
	args := m.Called(ctx, posting)
	var updated models.JobPosting
	if val := args.Get(0); val != nil {
		updated = val.(models.JobPosting)
	}
	return updated, args.Error(1)
}

func (m *JobRepositoryMock) DeactivatePosting(ctx context.Context, jobID int) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *JobRepositoryMock) ListPostings(ctx context.Context, filter repositories.JobFilter, page int) ([]models.JobPosting, int, error) {
	args := m.Called(ctx, filter, page)
	var postings []models.JobPosting
	if val := args.Get(0); val != nil {
		postings = val.([]models.JobPosting)
	}
	return postings, args.Int(1), args.Error(2)
}

func (m *JobRepositoryMock) CreateApplication(ctx context.Context, jobID, applicantID int, coverLetter, resumeName string) (models.JobApplication, error) {
	args := m.Called(ctx, jobID, applicantID, coverLetter, resumeName)
	var app models.JobApplication
	if val := args.Get(0); val != nil {
		app = val.(models.JobApplication)
	}
	return app, args.Error(1)
}

func (m *JobRepositoryMock) GetApplication(ctx context.Context, applicationID int) (models.JobApplication, error) {
	args := m.Called(ctx, applicationID)
	var app models.JobApplication
	if val := args.Get(0); val != nil {
		app = val.(models.JobApplication)
	}
	return app, args.Error(1)
}

func (m *JobRepositoryMock) SetApplicationStatus(ctx context.Context, applicationID int, status string) (models.JobApplication, error) {
	args := m.Called(ctx, applicationID, status)
	var app models.JobApplication
	if val := args.Get(0); val != nil {
		app = val.(models.JobApplication)
	}
	return app, args.Error(1)
}

func (m *JobRepositoryMock) ListApplicationsForJob(ctx context.Context, jobID int) ([]models.JobApplication, error) {
	args := m.Called(ctx, jobID)
	var apps []models.JobApplication
	if val := args.Get(0); val != nil {
		apps = val.([]models.JobApplication)
	}
	return apps, args.Error(1)
}

func (m *JobRepositoryMock) ListApplicationsForUser(ctx context.Context, applicantID int) ([]models.JobApplication, error) {
	args := m.Called(ctx, applicantID)
	var apps []models.JobApplication
	if val := args.Get(0); val != nil {
		apps = val.([]models.JobApplication)
	}
	return apps, args.Error(1)
}
