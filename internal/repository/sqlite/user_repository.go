package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goodpapers/backend/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, name, username, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var createdAt string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Username, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user %d created_at: %w", user.ID, err)
	}
	return user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user domain.UserFields) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (email, name, username, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name = excluded.name,
			username = excluded.username
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.Username, formatTime(user.CreatedAt)))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}
