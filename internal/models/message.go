package models

import (
	"strings"
	"time"
)

// Message belongs to a chat room. A message carries text content, a file
// payload, or both; it may not be empty on both. Immutable after creation
// except for the is_read flag.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	FileData  *string   `db:"file_data" json:"file_data,omitempty"`
	FileType  *string   `db:"file_type" json:"file_type,omitempty"`
	FileName  *string   `db:"file_name" json:"file_name,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasPayload reports whether the message carries anything at all.
func (m Message) HasPayload() bool {
	return strings.TrimSpace(m.Content) != "" || (m.FileData != nil && *m.FileData != "")
}

// ChatEvent is the websocket frame broadcast to every member of a room's
// fan-out group, the sender included.
type ChatEvent struct {
	Message *Message `json:"message"`
}
