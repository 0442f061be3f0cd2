package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SourceArxiv is the only paper source the library knows how to fetch.
const SourceArxiv = "arxiv"

// PaperFields is a paper that has not been written to the store yet. It has
// no id; the store assigns one on upsert.
type PaperFields struct {
	Title       string    `json:"title"`
	Authors     []string  `json:"authors"`
	Preview     string    `json:"preview"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	MetadataStr string    `json:"metadata_str,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Paper is a persisted paper row.
type Paper struct {
	ID int64 `json:"paper_id"`
	PaperFields
}

// ArxivMetadata is the arXiv-specific payload serialized into
// Paper.MetadataStr.
type ArxivMetadata struct {
	ArxivID       string            `json:"arxiv_id"`
	ArxivURL      string            `json:"arxiv_url"`
	Abstract      string            `json:"abstract"`
	Categories    []string          `json:"categories"`
	Comment       *string           `json:"comment"`
	Links         map[string]string `json:"links"`
	PublishedDate string            `json:"published_date"`
	UpdatedDate   string            `json:"updated_date"`
}

// ArxivMetadata decodes MetadataStr for arxiv-sourced papers.
func (p *PaperFields) ArxivMetadata() (*ArxivMetadata, error) {
	if p.Source != SourceArxiv || p.MetadataStr == "" {
		return nil, nil
	}
	var m ArxivMetadata
	if err := json.Unmarshal([]byte(p.MetadataStr), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PaperRepository stores papers keyed on their url.
type PaperRepository interface {
	// Upsert inserts the paper or, when a paper with the same url exists,
	// refreshes its fields and returns the existing id.
	Upsert(ctx context.Context, paper PaperFields) (*Paper, error)
	GetByID(ctx context.Context, id int64) (*Paper, error)
	GetByURL(ctx context.Context, url string) (*Paper, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Paper, error)
}
