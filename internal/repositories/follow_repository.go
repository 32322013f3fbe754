package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"linkup-service/internal/models"
)

var (
	ErrRequestNotFound = errors.New("follow request not found")
	ErrRequestPending  = errors.New("follow request already pending")
)

// PageSize used by follower/following listings.
const PageSize = 10

// FollowRepository is the relationship store: directed follow edges plus the
// pending requests that precede them.
type FollowRepository interface {
	CreateRequest(ctx context.Context, fromUserID, toUserID int) (models.FollowRequest, error)
	GetPendingRequest(ctx context.Context, requestID, toUserID int) (models.FollowRequest, error)
	SetRequestStatus(ctx context.Context, requestID int, status string) error
	HasPendingRequest(ctx context.Context, fromUserID, toUserID int) (bool, error)
	ListPendingRequests(ctx context.Context, toUserID int) ([]models.PendingRequest, error)

	CreateEdge(ctx context.Context, followerID, followeeID int) error
	DeleteEdge(ctx context.Context, followerID, followeeID int) error
	Follows(ctx context.Context, followerID, followeeID int) (bool, error)
	EitherFollows(ctx context.Context, userA, userB int) (bool, error)
	ListFollowing(ctx context.Context, userID, page int) ([]models.User, int, error)
	ListFollowers(ctx context.Context, userID, page int) ([]models.User, int, error)
}

// FollowRepo is a sqlx implementation of FollowRepository.
type FollowRepo struct {
	db *sqlx.DB
}

// NewFollowRepo constructs a FollowRepo.
func NewFollowRepo(db *sqlx.DB) *FollowRepo {
	return &FollowRepo{db: db}
}

// CreateRequest inserts a pending request. The partial unique index on
// (from_user_id, to_user_id) WHERE status='pending' makes concurrent
// duplicates impossible; the loser of the race gets ErrRequestPending.
func (r *FollowRepo) CreateRequest(ctx context.Context, fromUserID, toUserID int) (models.FollowRequest, error) {
	var req models.FollowRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO follow_requests (from_user_id, to_user_id, status)
         VALUES ($1, $2, 'pending')
         RETURNING id, from_user_id, to_user_id, status, created_at`,
		fromUserID, toUserID).
		StructScan(&req)
	if isUniqueViolation(err) {
		return models.FollowRequest{}, ErrRequestPending
	}
	return req, err
}

// GetPendingRequest fetches a pending request addressed to toUserID.
func (r *FollowRepo) GetPendingRequest(ctx context.Context, requestID, toUserID int) (models.FollowRequest, error) {
	var req models.FollowRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT id, from_user_id, to_user_id, status, created_at
         FROM follow_requests WHERE id=$1 AND to_user_id=$2 AND status='pending'`,
		requestID, toUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FollowRequest{}, ErrRequestNotFound
	}
	return req, err
}

// SetRequestStatus moves a pending request to a terminal state.
func (r *FollowRepo) SetRequestStatus(ctx context.Context, requestID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE follow_requests SET status=$2 WHERE id=$1 AND status='pending'`,
		requestID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// HasPendingRequest checks for an outbound pending request.
func (r *FollowRepo) HasPendingRequest(ctx context.Context, fromUserID, toUserID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM follow_requests WHERE from_user_id=$1 AND to_user_id=$2 AND status='pending')`,
		fromUserID, toUserID)
	return exists, err
}

// ListPendingRequests returns incoming pending requests with sender details.
func (r *FollowRepo) ListPendingRequests(ctx context.Context, toUserID int) ([]models.PendingRequest, error) {
	requests := []models.PendingRequest{}
	err := r.db.SelectContext(ctx, &requests,
		`SELECT fr.id, fr.from_user_id, fr.to_user_id, fr.status, fr.created_at,
                u.username AS from_username, u.first_name AS from_first_name, u.last_name AS from_last_name
         FROM follow_requests fr
         JOIN users u ON u.id = fr.from_user_id
         WHERE fr.to_user_id=$1 AND fr.status='pending'
         ORDER BY fr.created_at DESC, fr.id DESC`,
		toUserID)
	return requests, err
}

// CreateEdge records a follow edge. Idempotent: a duplicate pair is a no-op.
func (r *FollowRepo) CreateEdge(ctx context.Context, followerID, followeeID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_following (user_id, following_user_id) VALUES ($1, $2)
         ON CONFLICT (user_id, following_user_id) DO NOTHING`,
		followerID, followeeID)
	return err
}

// DeleteEdge removes a follow edge. Not an error if none existed.
func (r *FollowRepo) DeleteEdge(ctx context.Context, followerID, followeeID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_following WHERE user_id=$1 AND following_user_id=$2`,
		followerID, followeeID)
	return err
}

// Follows checks the directed edge followerID -> followeeID.
func (r *FollowRepo) Follows(ctx context.Context, followerID, followeeID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_following WHERE user_id=$1 AND following_user_id=$2)`,
		followerID, followeeID)
	return exists, err
}

// EitherFollows checks whether an edge exists in either direction.
func (r *FollowRepo) EitherFollows(ctx context.Context, userA, userB int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_following
            WHERE (user_id=$1 AND following_user_id=$2)
               OR (user_id=$2 AND following_user_id=$1))`,
		userA, userB)
	return exists, err
}

// ListFollowing returns the users the subject follows, newest edge first,
// plus the total edge count for pagination.
func (r *FollowRepo) ListFollowing(ctx context.Context, userID, page int) ([]models.User, int, error) {
	return r.listEdgeUsers(ctx,
		`SELECT `+prefixedUserColumns+` FROM user_following f
         JOIN users u ON u.id = f.following_user_id
         WHERE f.user_id=$1
         ORDER BY f.created_at DESC, f.id DESC
         LIMIT $2 OFFSET $3`,
		`SELECT COUNT(*) FROM user_following WHERE user_id=$1`,
		userID, page)
}

// ListFollowers returns the users following the subject.
func (r *FollowRepo) ListFollowers(ctx context.Context, userID, page int) ([]models.User, int, error) {
	return r.listEdgeUsers(ctx,
		`SELECT `+prefixedUserColumns+` FROM user_following f
         JOIN users u ON u.id = f.user_id
         WHERE f.following_user_id=$1
         ORDER BY f.created_at DESC, f.id DESC
         LIMIT $2 OFFSET $3`,
		`SELECT COUNT(*) FROM user_following WHERE following_user_id=$1`,
		userID, page)
}

const prefixedUserColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.created_at`

func (r *FollowRepo) listEdgeUsers(ctx context.Context, listQuery, countQuery string, userID, page int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, listQuery, userID, PageSize, (page-1)*PageSize)
	return users, total, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
