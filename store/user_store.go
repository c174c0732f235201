// api/store/user_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"veloshop/api/models"
)

// ErrUserNotFound is returned when a dashboard account lookup misses.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when signup hits an existing email.
var ErrUserExists = errors.New("user already exists")

type UserStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserStore(db *sqlx.DB, logger *zap.Logger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

// CreateUser inserts a new dashboard account.
func (s *UserStore) CreateUser(ctx context.Context, email string, hashedPassword []byte) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	err := s.db.GetContext(ctx, user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// isUniqueViolation matches the pq duplicate-key error for the users email
// constraint, whichever name the index carries.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return msg == `pq: duplicate key value violates unique constraint "idx_users_email"` ||
		msg == `pq: duplicate key value violates unique constraint "users_email_key"`
}
