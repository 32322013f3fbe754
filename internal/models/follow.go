package models

import "time"

// Follow request lifecycle states. Accepted and declined are terminal.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// FollowEdge is a directed "follower follows followee" record. Edges are
// created only by accepting a follow request and removed on unfollow.
type FollowEdge struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	FollowingID int       `db:"following_user_id" json:"following_user_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FollowRequest is a pending proposal preceding a FollowEdge.
type FollowRequest struct {
	ID         int       `db:"id" json:"id"`
	FromUserID int       `db:"from_user_id" json:"from_user_id"`
	ToUserID   int       `db:"to_user_id" json:"to_user_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PendingRequest is an incoming request joined with its sender for API lists.
type PendingRequest struct {
	FollowRequest
	FromUsername  string `db:"from_username" json:"from_username"`
	FromFirstName string `db:"from_first_name" json:"from_first_name"`
	FromLastName  string `db:"from_last_name" json:"from_last_name"`
}
