package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goodpapers/backend/internal/domain"
)

type UserPaperRepository struct {
	db *sql.DB
}

func NewUserPaperRepository(db *sql.DB) *UserPaperRepository {
	return &UserPaperRepository{db: db}
}

func (r *UserPaperRepository) Upsert(ctx context.Context, record domain.UserPaperRecord) (*domain.UserPaperRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_paper_records (user_id, paper_id) VALUES (?, ?) ON CONFLICT (user_id, paper_id) DO NOTHING`,
		record.UserID, record.PaperID)
	if err != nil {
		return nil, mapError(err)
	}
	return &domain.UserPaperRecord{UserID: record.UserID, PaperID: record.PaperID}, nil
}

func (r *UserPaperRepository) Get(ctx context.Context, userID, paperID int64) (*domain.UserPaperRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rec := &domain.UserPaperRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, paper_id FROM user_paper_records WHERE user_id = ? AND paper_id = ?`,
		userID, paperID,
	).Scan(&rec.UserID, &rec.PaperID)
	if errors.Is(err, sql.ErrNoRows) {
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

	rows, err := r.db.QueryContext(ctx,
		`SELECT paper_id FROM user_paper_records WHERE user_id = ? ORDER BY paper_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
