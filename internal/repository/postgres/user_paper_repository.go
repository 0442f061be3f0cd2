package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
)

type UserPaperRepository struct {
	db *pgxpool.Pool
}

func NewUserPaperRepository(db *pgxpool.Pool) *UserPaperRepository {
	return &UserPaperRepository{db: db}
}

// Upsert records that the paper is in the user's library. The row has no
// columns besides its key, so a repeat is a no-op.
func (r *UserPaperRepository) Upsert(ctx context.Context, record domain.UserPaperRecord) (*domain.UserPaperRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO user_paper_records (user_id, paper_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, paper_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, record.UserID, record.PaperID); err != nil {
		return nil, mapError(err)
	}
	return &domain.UserPaperRecord{UserID: record.UserID, PaperID: record.PaperID}, nil
}

func (r *UserPaperRepository) Get(ctx context.Context, userID, paperID int64) (*domain.UserPaperRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rec := &domain.UserPaperRecord{}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, paper_id FROM user_paper_records WHERE user_id = $1 AND paper_id = $2`,
		userID, paperID,
	).Scan(&rec.UserID, &rec.PaperID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *UserPaperRepository) ListPaperIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT paper_id FROM user_paper_records WHERE user_id = $1 ORDER BY paper_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
