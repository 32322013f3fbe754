package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"linkup-service/internal/models"
)

// MessagePageSize bounds message history pages.
const MessagePageSize = 50

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, roomID, senderID int, content string, fileData, fileType, fileName *string) (models.Message, error)
	ListForRoom(ctx context.Context, roomID, page int) ([]models.Message, int, error)
	MarkRoomRead(ctx context.Context, roomID, readerID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, room_id, sender_id, content, file_data, file_type, file_name, is_read, created_at`

// Create stores a message in a room.
func (r *MessageRepo) Create(ctx context.Context, roomID, senderID int, content string, fileData, fileType, fileName *string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, sender_id, content, file_data, file_type, file_name)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+messageColumns,
		roomID, senderID, content, fileData, fileType, fileName).
		StructScan(&msg)
	return msg, err
}

// ListForRoom returns one page of the room's messages, newest first, plus
// the total count for pagination.
func (r *MessageRepo) ListForRoom(ctx context.Context, roomID, page int) ([]models.Message, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE room_id=$1`, roomID); err != nil {
		return nil, 0, err
	}
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE room_id=$1
         ORDER BY created_at DESC, id DESC
         LIMIT $2 OFFSET $3`,
		roomID, MessagePageSize, (page-1)*MessagePageSize)
	return msgs, total, err
}

// MarkRoomRead flags every message sent to readerID in the room as read.
func (r *MessageRepo) MarkRoomRead(ctx context.Context, roomID, readerID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE WHERE room_id=$1 AND sender_id<>$2 AND is_read = FALSE`,
		roomID, readerID)
	return err
}
