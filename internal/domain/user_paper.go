package domain

import (
	"context"
)

// UserPaperRecord marks a paper as part of a user's library.
type UserPaperRecord struct {
	UserID  int64 `json:"user_id"`
	PaperID int64 `json:"paper_id"`
}

// LibraryEntry is a paper in a user's library together with the user's
// current reading state for it.
type LibraryEntry struct {
	Paper  *Paper  `json:"paper"`
	Update *Update `json:"update,omitempty"`
}

// UserPaperRepository stores library membership keyed on (user_id, paper_id).
type UserPaperRepository interface {
	Upsert(ctx context.Context, record UserPaperRecord) (*UserPaperRecord, error)
	Get(ctx context.Context, userID, paperID int64) (*UserPaperRecord, error)
	ListPaperIDs(ctx context.Context, userID int64) ([]int64, error)
}
