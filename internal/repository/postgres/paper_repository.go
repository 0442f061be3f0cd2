package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
)

// PaperRepository keys papers on url. A re-upsert refreshes the descriptive
// columns and keeps the first created_at.
type PaperRepository struct {
	db *pgxpool.Pool
}

func NewPaperRepository(db *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{db: db}
}

const paperColumns = `paper_id, title, authors, preview, url, source, COALESCE(metadata_str, ''), created_at`

func scanPaper(row pgx.Row) (*domain.Paper, error) {
	p := &domain.Paper{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Authors,
		&p.Preview,
		&p.URL,
		&p.Source,
		&p.MetadataStr,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaperRepository) Upsert(ctx context.Context, paper domain.PaperFields) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO papers (title, authors, preview, url, source, metadata_str, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			authors = EXCLUDED.authors,
			preview = EXCLUDED.preview,
			source = EXCLUDED.source,
			metadata_str = EXCLUDED.metadata_str
		RETURNING ` + paperColumns

	authors := paper.Authors
	if authors == nil {
		authors = []string{}
	}
	p, err := scanPaper(r.db.QueryRow(ctx, query,
		paper.Title,
		authors,
		paper.Preview,
		paper.URL,
		paper.Source,
		paper.MetadataStr,
		paper.CreatedAt,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PaperRepository) GetByID(ctx context.Context, id int64) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPaper(r.db.QueryRow(ctx, `SELECT `+paperColumns+` FROM papers WHERE paper_id = $1`, id))
}

func (r *PaperRepository) GetByURL(ctx context.Context, url string) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPaper(r.db.QueryRow(ctx, `SELECT `+paperColumns+` FROM papers WHERE url = $1`, url))
}

// ListByIDs returns the papers that exist among ids, ordered by id.
func (r *PaperRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+paperColumns+` FROM papers WHERE paper_id = ANY($1) ORDER BY paper_id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []*domain.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}
