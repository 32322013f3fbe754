package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"linkup-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, userID int, firstName, lastName, username string) (models.User, error)
	Search(ctx context.Context, query string, excludeUserID int) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at`

// Create inserts a new account row.
func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash)
         VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.User{}, ErrUserExists
	}
	return created, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Update changes the mutable profile fields.
func (r *UserRepo) Update(ctx context.Context, userID int, firstName, lastName, username string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET first_name=$2, last_name=$3, username=$4 WHERE id=$1 RETURNING `+userColumns,
		userID, firstName, lastName, username).
		StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return models.User{}, ErrUserExists
	}
	return user, err
}

// Search matches the query case-insensitively against name, email and
// username, excluding the caller. An empty query returns no rows; that guard
// lives in the handler so the repository stays a plain lookup.
func (r *UserRepo) Search(ctx context.Context, query string, excludeUserID int) ([]models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users
         WHERE id <> $1
           AND (LOWER(first_name) LIKE $2 OR LOWER(last_name) LIKE $2
                OR LOWER(email) LIKE $2 OR LOWER(username) LIKE $2)
         ORDER BY username
         LIMIT 20`,
		excludeUserID, pattern)
	return users, err
}
