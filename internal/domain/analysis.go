package domain

import (
	"context"
	"time"
)

// PaperAIAnalysis is a model-generated analysis of a paper, shared by all
// users. Nothing in this service generates them; they are read-only here.
type PaperAIAnalysis struct {
	ID        int64     `json:"analysis_id"`
	PaperID   int64     `json:"paper_id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type AnalysisRepository interface {
	// Create only seeds analyses; nothing generates them yet.
	Create(ctx context.Context, analysis PaperAIAnalysis) (*PaperAIAnalysis, error)
	ListByPaper(ctx context.Context, paperID int64) ([]*PaperAIAnalysis, error)
}
