package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ReadingStatus is a user's reading state for one paper.
type ReadingStatus string

const (
	StatusAddedToLibrary  ReadingStatus = "added to library"
	StatusWantToRead      ReadingStatus = "want to read"
	StatusReading         ReadingStatus = "reading"
	StatusFinishedReading ReadingStatus = "finished reading"
	StatusSkipped         ReadingStatus = "skipped"
	StatusArchived        ReadingStatus = "archived"
)

// ReadingStatuses lists every valid status in display order.
var ReadingStatuses = []ReadingStatus{
	StatusAddedToLibrary,
	StatusWantToRead,
	StatusReading,
	StatusFinishedReading,
	StatusSkipped,
	StatusArchived,
}

// ParseReadingStatus validates s. The empty string maps to
// StatusAddedToLibrary.
func ParseReadingStatus(s string) (ReadingStatus, error) {
	if s == "" {
		return StatusAddedToLibrary, nil
	}
	for _, st := range ReadingStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "reading_status", Msg: fmt.Sprintf("unknown reading status %q", s)}
}

// ValidateProgress checks that p is a fraction in [0, 1].
func ValidateProgress(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return &ValidationError{Field: "reading_progress", Msg: fmt.Sprintf("%v is outside [0, 1]", p)}
	}
	return nil
}

// MessageAddedToLibrary is the update message written when a user adds a
// paper.
const MessageAddedToLibrary = "User added this paper to their library."

// MessageReadingStateChanged is written when a user moves a paper that is
// already in their library to a new status or progress.
const MessageReadingStateChanged = "User updated their reading progress."

// UpdateFields is a user's reading state before it is written. The paper it
// refers to is supplied by the writer once the paper has a store id.
type UpdateFields struct {
	UserID          int64         `json:"user_id"`
	Message         string        `json:"message"`
	ReadingStatus   ReadingStatus `json:"reading_status"`
	ReadingProgress float64       `json:"reading_progress"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Update is a persisted update row. There is one per (user, paper) pair.
type Update struct {
	ID      int64 `json:"update_id"`
	PaperID int64 `json:"paper_id"`
	UpdateFields
}

// UpdateRepository stores updates keyed on (paper_id, user_id).
type UpdateRepository interface {
	// Upsert overwrites the previous update for the same pair.
	Upsert(ctx context.Context, paperID int64, update UpdateFields) (*Update, error)
	Get(ctx context.Context, userID, paperID int64) (*Update, error)
	ListByUser(ctx context.Context, userID int64) ([]*Update, error)
	ListByPaper(ctx context.Context, paperID int64) ([]*Update, error)
}
