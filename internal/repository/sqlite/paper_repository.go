package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goodpapers/backend/internal/domain"
)

type PaperRepository struct {
	db *sql.DB
}

func NewPaperRepository(db *sql.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

const paperColumns = `paper_id, title, authors_json, preview, url, source, COALESCE(metadata_str, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*domain.Paper, error) {
	p := &domain.Paper{}
	var authorsJSON, createdAt string
	err := row.Scan(
		&p.ID,
		&p.Title,
		&authorsJSON,
		&p.Preview,
		&p.URL,
		&p.Source,
		&p.MetadataStr,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("paper %d authors: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("paper %d created_at: %w", p.ID, err)
	}
	return p, nil
}

// Upsert keys on url. A re-upsert refreshes the descriptive columns and
// keeps the first created_at.
func (r *PaperRepository) Upsert(ctx context.Context, paper domain.PaperFields) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	authors := paper.Authors
	if authors == nil {
		authors = []string{}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO papers (title, authors_json, preview, url, source, metadata_str, created_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		ON CONFLICT (url) DO UPDATE SET
			title = excluded.title,
			authors_json = excluded.authors_json,
			preview = excluded.preview,
			source = excluded.source,
			metadata_str = excluded.metadata_str
		RETURNING ` + paperColumns

	p, err := scanPaper(r.db.QueryRowContext(ctx, query,
		paper.Title,
		string(authorsJSON),
		paper.Preview,
		paper.URL,
		paper.Source,
		paper.MetadataStr,
		formatTime(paper.CreatedAt),
	))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PaperRepository) GetByID(ctx context.Context, id int64) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPaper(r.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE paper_id = ?`, id))
}

func (r *PaperRepository) GetByURL(ctx context.Context, url string) (*domain.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanPaper(r.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE url = ?`, url))
}

// ListByIDs returns the papers that exist among ids, ordered by id.
func (r *PaperRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE paper_id IN (`+placeholders+`) ORDER BY paper_id`, args...)
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
