package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/events"
	"linkup-service/internal/logger"
	"linkup-service/internal/models"
	"linkup-service/internal/observability"
	"linkup-service/internal/repositories"
)

// SocialHandler implements the follow graph: requests, accept/decline,
// unfollow, status lookups and follower/following listings. Side-effect
// notifications for the counterpart land in the notification log.
type SocialHandler struct {
	userRepo         repositories.UserRepository
	followRepo       repositories.FollowRepository
	notificationRepo repositories.NotificationRepository
}

// NewSocialHandler builds a SocialHandler.
func NewSocialHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, notificationRepo repositories.NotificationRepository) *SocialHandler {
	return &SocialHandler{userRepo: userRepo, followRepo: followRepo, notificationRepo: notificationRepo}
}

// Follow creates a pending follow request toward user_id. No edge is created
// here; that happens only when the target accepts.
func (h *SocialHandler) Follow(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	requesterID := currentUserID(c)
	if req.UserID == requesterID {
		observability.IncFollowOp("follow", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	target, err := h.userRepo.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			observability.IncFollowOp("follow", "not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up user"})
		return
	}

	request, err := h.followRepo.CreateRequest(c.Request.Context(), requesterID, target.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestPending) {
			observability.IncFollowOp("follow", "conflict")
			c.JSON(http.StatusConflict, gin.H{"error": "follow request already sent"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create follow request"})
		return
	}

	requester, err := h.userRepo.GetByID(c.Request.Context(), requesterID)
	if err == nil {
		h.notify(c.Request.Context(), target.ID, "New Follow Request",
			fmt.Sprintf("%s wants to follow you", requester.FullName()),
			models.NotificationFollowRequest, request.ID)
	}

	observability.IncFollowOp("follow", "ok")
	events.Publish(c.Request.Context(), "social.follow_requested",
		events.NewEnvelope("social", "follow_requested",
			gin.H{"request_id": request.ID, "from_user_id": requesterID, "to_user_id": target.ID}),
		events.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusOK, gin.H{"status": "follow_request_sent", "request_id": request.ID})
}

// RespondToRequest accepts or declines a pending request addressed to the
// caller. Accepting creates the follow edge; either action is terminal.
func (h *SocialHandler) RespondToRequest(c *gin.Context) {
	var req struct {
		RequestID int    `json:"request_id" binding:"required"`
		Action    string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id and action are required"})
		return
	}
	if req.Action != "accept" && req.Action != "decline" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be accept or decline"})
		return
	}

	responderID := currentUserID(c)
	request, err := h.followRepo.GetPendingRequest(c.Request.Context(), req.RequestID, responderID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			observability.IncFollowOp("respond", "not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "follow request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up request"})
		return
	}

	responder, err := h.userRepo.GetByID(c.Request.Context(), responderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up user"})
		return
	}

	if req.Action == "accept" {
		if err := h.followRepo.CreateEdge(c.Request.Context(), request.FromUserID, responderID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create follow"})
			return
		}
		if err := h.followRepo.SetRequestStatus(c.Request.Context(), request.ID, models.RequestStatusAccepted); err != nil {
			if errors.Is(err, repositories.ErrRequestNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "follow request not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update request"})
			return
		}
		h.notify(c.Request.Context(), request.FromUserID, "Follow Request Accepted",
			fmt.Sprintf("%s accepted your follow request", responder.FullName()),
			models.NotificationFollowAccepted, request.ID)

		observability.IncFollowOp("respond", "accepted")
		events.Publish(c.Request.Context(), "social.follow_accepted",
			events.NewEnvelope("social", "follow_accepted",
				gin.H{"request_id": request.ID, "follower_id": request.FromUserID, "followee_id": responderID}),
			events.BuildHeaders(requestIDFromContext(c), ""))

		c.JSON(http.StatusOK, gin.H{"status": "accepted"})
		return
	}

	if err := h.followRepo.SetRequestStatus(c.Request.Context(), request.ID, models.RequestStatusDeclined); err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "follow request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update request"})
		return
	}
	h.notify(c.Request.Context(), request.FromUserID, "Follow Request Declined",
		fmt.Sprintf("%s declined your follow request", responder.FullName()),
		models.NotificationFollowDeclined, request.ID)

	observability.IncFollowOp("respond", "declined")
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

// Unfollow removes the caller's follow edge toward user_id. Removing an edge
// that does not exist is not an error.
func (h *SocialHandler) Unfollow(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.followRepo.DeleteEdge(c.Request.Context(), currentUserID(c), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow"})
		return
	}

	observability.IncFollowOp("unfollow", "ok")
	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

// FollowStatus reports the caller's relation to user_id: an outbound pending
// request wins over an existing edge, which wins over nothing.
func (h *SocialHandler) FollowStatus(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	viewerID := currentUserID(c)

	pending, err := h.followRepo.HasPendingRequest(c.Request.Context(), viewerID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check status"})
		return
	}
	if pending {
		c.JSON(http.StatusOK, gin.H{"status": "requested"})
		return
	}

	following, err := h.followRepo.Follows(c.Request.Context(), viewerID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check status"})
		return
	}
	if following {
		c.JSON(http.StatusOK, gin.H{"status": "following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "none"})
}

// ListPendingRequests returns incoming pending requests for the caller.
func (h *SocialHandler) ListPendingRequests(c *gin.Context) {
	requests, err := h.followRepo.ListPendingRequests(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": requests})
}

// Following lists who the subject follows, paginated.
func (h *SocialHandler) Following(c *gin.Context) {
	h.listEdges(c, h.followRepo.ListFollowing)
}

// Followers lists who follows the subject, paginated.
func (h *SocialHandler) Followers(c *gin.Context) {
	h.listEdges(c, h.followRepo.ListFollowers)
}

func (h *SocialHandler) listEdges(c *gin.Context, list func(ctx context.Context, userID, page int) ([]models.User, int, error)) {
	subjectID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	page := pageFromQuery(c)

	users, total, err := list(c.Request.Context(), subjectID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, paginated{
		Count:    total,
		Page:     page,
		PageSize: repositories.PageSize,
		Results:  users,
	})
}

// notify appends a notification row; failure is logged, never surfaced, so a
// dropped notification cannot fail the follow operation that caused it.
func (h *SocialHandler) notify(ctx context.Context, userID int, title, message, notificationType string, relatedID int) {
	if _, err := h.notificationRepo.Create(ctx, userID, title, message, notificationType, relatedID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to create notification")
		return
	}
	observability.IncNotificationCreated()
}
