package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"linkup-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository is the append-only per-user notification log.
// Rows are never deleted; only the is_read flag flips.
type NotificationRepository interface {
	Create(ctx context.Context, userID int, title, message, notificationType string, relatedID int) (models.Notification, error)
	ListForUser(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create appends a notification for the recipient.
func (r *NotificationRepo) Create(ctx context.Context, userID int, title, message, notificationType string, relatedID int) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, title, message, notification_type, related_id)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, user_id, title, message, notification_type, related_id, is_read, created_at`,
		userID, title, message, notificationType, relatedID).
		StructScan(&n)
	return n, err
}

// ListForUser returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT id, user_id, title, message, notification_type, related_id, is_read, created_at
         FROM notifications WHERE user_id=$1
         ORDER BY created_at DESC, id DESC`,
		userID)
	return notifications, err
}

// MarkRead flips is_read for a notification owned by userID.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id=$1 AND user_id=$2`,
		notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
