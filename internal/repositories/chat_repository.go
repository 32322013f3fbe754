package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"linkup-service/internal/models"
)

var ErrRoomNotFound = errors.New("chat room not found")

// ChatRepository abstracts chat room persistence. Rooms are unique per
// unordered user pair.
type ChatRepository interface {
	CreateOrGetRoom(ctx context.Context, userID, otherID int) (models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoom, error)
	TouchRoom(ctx context.Context, roomID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const roomColumns = `id, user1_id, user2_id, created_at, updated_at`

// CreateOrGetRoom returns the room for the unordered pair, creating it if
// missing. The insert races safely against concurrent callers: ON CONFLICT
// DO NOTHING plus a follow-up fetch always converges on the single row.
func (r *ChatRepo) CreateOrGetRoom(ctx context.Context, userID, otherID int) (models.ChatRoom, error) {
	if userID == otherID {
		return models.ChatRoom{}, errors.New("cannot create chat room with self")
	}
	user1, user2 := userID, otherID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	var room models.ChatRoom
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chat_rooms (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING `+roomColumns,
		user1, user2).
		StructScan(&room)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.db.GetContext(ctx, &room,
			`SELECT `+roomColumns+` FROM chat_rooms WHERE user1_id=$1 AND user2_id=$2`,
			user1, user2)
	}
	return room, err
}

// GetRoom fetches a room by id.
func (r *ChatRepo) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	return room, err
}

// ListRoomsForUser returns the user's rooms, most recently active first.
func (r *ChatRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.ChatRoom, error) {
	rooms := []models.ChatRoom{}
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM chat_rooms
         WHERE user1_id=$1 OR user2_id=$1
         ORDER BY updated_at DESC`,
		userID)
	return rooms, err
}

// TouchRoom bumps updated_at so the room sorts to the top of listings.
func (r *ChatRepo) TouchRoom(ctx context.Context, roomID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chat_rooms SET updated_at = NOW() WHERE id=$1`, roomID)
	return err
}
