package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goodpapers/backend/internal/domain"
)

type UpdateRepository struct {
	db *sql.DB
}

func NewUpdateRepository(db *sql.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

const updateColumns = `update_id, paper_id, user_id, message, reading_status, reading_progress, created_at`

func scanUpdate(row rowScanner) (*domain.Update, error) {
	u := &domain.Update{}
	var status, createdAt string
	err := row.Scan(&u.ID, &u.PaperID, &u.UserID, &u.Message, &status, &u.ReadingProgress, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.ReadingStatus = domain.ReadingStatus(status)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("update %d created_at: %w", u.ID, err)
	}
	return u, nil
}

// Upsert keys on (paper_id, user_id) and overwrites the previous state.
func (r *UpdateRepository) Upsert(ctx context.Context, paperID int64, update domain.UpdateFields) (*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO updates (paper_id, user_id, message, reading_status, reading_progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (paper_id, user_id) DO UPDATE SET
			message = excluded.message,
			reading_status = excluded.reading_status,
			reading_progress = excluded.reading_progress,
			created_at = excluded.created_at
		RETURNING ` + updateColumns

	u, err := scanUpdate(r.db.QueryRowContext(ctx, query,
		paperID,
		update.UserID,
		update.Message,
		string(update.ReadingStatus),
		update.ReadingProgress,
		formatTime(update.CreatedAt),
	))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UpdateRepository) Get(ctx context.Context, userID, paperID int64) (*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUpdate(r.db.QueryRowContext(ctx,
		`SELECT `+updateColumns+` FROM updates WHERE user_id = ? AND paper_id = ?`, userID, paperID))
}

func (r *UpdateRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates WHERE user_id = ? ORDER BY created_at DESC, update_id DESC`, userID)
}

func (r *UpdateRepository) ListByPaper(ctx context.Context, paperID int64) ([]*domain.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates WHERE paper_id = ? ORDER BY created_at DESC, update_id DESC`, paperID)
}

func (r *UpdateRepository) list(ctx context.Context, query string, arg int64) ([]*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []*domain.Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
