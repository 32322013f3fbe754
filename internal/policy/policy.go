// Package policy decides whether a user may take part in a chat room.
//
// Chat is gated by the follow graph: a room member may read and write as long
// as a follow edge exists between the two participants in either direction.
// The relationship need not be mutual. Callers must re-evaluate the policy on
// every connect and on every inbound message, because an unfollow can revoke
// access mid-session.
package policy

import (
	"context"

	"linkup-service/internal/models"
)

// FollowChecker is the slice of the relationship store the policy needs.
type FollowChecker interface {
	EitherFollows(ctx context.Context, userA, userB int) (bool, error)
}

// CanParticipate reports whether userID may participate in the room.
// It fails closed: a user who is not one of the room's two participants is
// always refused, regardless of follow edges.
func CanParticipate(ctx context.Context, follows FollowChecker, room models.ChatRoom, userID int) (bool, error) {
	if !room.HasParticipant(userID) {
		return false, nil
	}
	return follows.EitherFollows(ctx, userID, room.OtherParticipant(userID))
}
