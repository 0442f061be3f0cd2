package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
)

type AnalysisRepository struct {
	db *pgxpool.Pool
}

func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores a seeded analysis.
func (r *AnalysisRepository) Create(ctx context.Context, a domain.PaperAIAnalysis) (*domain.PaperAIAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO paper_ai_analyses (paper_id, prompt, response, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING analysis_id
	`
	if err := r.db.QueryRow(ctx, query, a.PaperID, a.Prompt, a.Response, a.CreatedAt).Scan(&a.ID); err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *AnalysisRepository) ListByPaper(ctx context.Context, paperID int64) ([]*domain.PaperAIAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT analysis_id, paper_id, prompt, response, created_at
		FROM paper_ai_analyses WHERE paper_id = $1
		ORDER BY created_at DESC, analysis_id DESC
	`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PaperAIAnalysis
	for rows.Next() {
		a := &domain.PaperAIAnalysis{}
		if err := rows.Scan(&a.ID, &a.PaperID, &a.Prompt, &a.Response, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
