package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/google/uuid"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db     querier
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db querier, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Create inserts a user; emails are unique regardless of case.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	id, err := newID()
	if err != nil {
		return err
	}

	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, user.Email, user.PasswordHash, now, now,
	)
	if isUniqueViolation(err) {
		return persistence.ErrUserAlreadyExists
	}

	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, persistence.ErrUserNotFound
	}

	return r.get(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *UserRepository) get(ctx context.Context, condition string, arg any) (*models.User, error) {
	var user models.User

	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE `+condition, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}

	return id.String(), nil
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// currentTime matches the microsecond precision of PostgreSQL timestamps.
func currentTime() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
