package models

import (
	"fmt"
	"time"
)

// ChatRoom is a private room between exactly two users. Rows are normalized
// so that user1_id < user2_id, which makes the pair unique regardless of who
// started the chat.
type ChatRoom struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomName returns the canonical fan-out group key for the room. It is the
// same string whichever participant asks: "chat_<min>_<max>".
func (r ChatRoom) RoomName() string {
	lo, hi := r.User1ID, r.User2ID
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("chat_%d_%d", lo, hi)
}

// HasParticipant reports whether the user is one of the two room members.
func (r ChatRoom) HasParticipant(userID int) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// OtherParticipant returns the id of the member opposite to userID.
// The caller must have checked HasParticipant first.
func (r ChatRoom) OtherParticipant(userID int) int {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// RoomSummary is the API view of a room for one participant.
type RoomSummary struct {
	ID        int       `json:"id"`
	OtherUser User      `json:"other_user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
