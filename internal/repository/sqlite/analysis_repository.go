package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goodpapers/backend/internal/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores a seeded analysis.
func (r *AnalysisRepository) Create(ctx context.Context, a domain.PaperAIAnalysis) (*domain.PaperAIAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO paper_ai_analyses (paper_id, prompt, response, created_at) VALUES (?, ?, ?, ?)`,
		a.PaperID, a.Prompt, a.Response, formatTime(a.CreatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnalysisRepository) ListByPaper(ctx context.Context, paperID int64) ([]*domain.PaperAIAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT analysis_id, paper_id, prompt, response, created_at
		FROM paper_ai_analyses WHERE paper_id = ?
		ORDER BY created_at DESC, analysis_id DESC
	`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PaperAIAnalysis
	for rows.Next() {
		a := &domain.PaperAIAnalysis{}
		var createdAt string
		if err := rows.Scan(&a.ID, &a.PaperID, &a.Prompt, &a.Response, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("analysis %d created_at: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
