package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
)

type UpdateRepository struct {
	db *pgxpool.Pool
}

func NewUpdateRepository(db *pgxpool.Pool) *UpdateRepository {
	return &UpdateRepository{db: db}
}

const updateColumns = `update_id, paper_id, user_id, message, reading_status, reading_progress, created_at`

func scanUpdate(row pgx.Row) (*domain.Update, error) {
	u := &domain.Update{}
	err := row.Scan(
		&u.ID,
		&u.PaperID,
		&u.UserID,
		&u.Message,
		&u.ReadingStatus,
		&u.ReadingProgress,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UpdateRepository) Upsert(ctx context.Context, paperID int64, update domain.UpdateFields) (*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO updates (paper_id, user_id, message, reading_status, reading_progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (paper_id, user_id) DO UPDATE SET
			message = EXCLUDED.message,
			reading_status = EXCLUDED.reading_status,
			reading_progress = EXCLUDED.reading_progress,
			created_at = EXCLUDED.created_at
		RETURNING ` + updateColumns

	u, err := scanUpdate(r.db.QueryRow(ctx, query,
		paperID,
		update.UserID,
		update.Message,
		string(update.ReadingStatus),
		update.ReadingProgress,
		update.CreatedAt,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UpdateRepository) Get(ctx context.Context, userID, paperID int64) (*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanUpdate(r.db.QueryRow(ctx,
		`SELECT `+updateColumns+` FROM updates WHERE user_id = $1 AND paper_id = $2`, userID, paperID))
}

func (r *UpdateRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates WHERE user_id = $1 ORDER BY created_at DESC, update_id DESC`, userID)
}

func (r *UpdateRepository) ListByPaper(ctx context.Context, paperID int64) ([]*domain.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates WHERE paper_id = $1 ORDER BY created_at DESC, update_id DESC`, paperID)
}

func (r *UpdateRepository) list(ctx context.Context, query string, arg int64) ([]*domain.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, arg)
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
