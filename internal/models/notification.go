package models

import "time"

// Notification types emitted by the social graph and job board.
const (
	NotificationFollowRequest  = "follow_request"
	NotificationFollowAccepted = "follow_accepted"
	NotificationFollowDeclined = "follow_declined"
	NotificationJobApplication = "job_application"
	NotificationJobStatus      = "job_application_status"
)

// Notification is an append-only per-user record. Only is_read ever changes.
type Notification struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"notification_type" json:"type"`
	RelatedID int       `db:"related_id" json:"related_id"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
