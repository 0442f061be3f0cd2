// Package records builds the in-memory entities a user action produces,
// before any of them is written to the store.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/pkg/arxiv"
)

// MetadataSource resolves a paper URL to arXiv metadata. *arxiv.Client
// satisfies it.
type MetadataSource interface {
	FetchByURL(ctx context.Context, url string) (*arxiv.Metadata, error)
}

// PaperAction is what "a user adds a paper" materializes into: the paper and
// the user's update for it. Neither has a store id yet.
type PaperAction struct {
	Paper  domain.PaperFields
	Update domain.UpdateFields
}

type Factory struct {
	source MetadataSource
	now    func() time.Time
	log    *logger.Logger
}

func NewFactory(source MetadataSource, log *logger.Logger) *Factory {
	return &Factory{
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Now is the factory clock in UTC.
func (f *Factory) Now() time.Time {
	return f.now()
}

// NewArxivPaper fetches the paper behind url and builds the paper and update
// for userID. A failed fetch is returned as an error; it never yields an
// empty paper.
func (f *Factory) NewArxivPaper(ctx context.Context, userID int64, url string, status domain.ReadingStatus, progress float64) (*PaperAction, error) {
	if _, err := domain.ParseReadingStatus(string(status)); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.StatusAddedToLibrary
	}
	if err := domain.ValidateProgress(progress); err != nil {
		return nil, err
	}

	meta, err := f.source.FetchByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch paper from arxiv: %w", err)
	}
	return f.fromMetadata(userID, url, meta, status, progress)
}

// FromMetadata builds the action for metadata that was already fetched, as
// the batch path does.
func (f *Factory) FromMetadata(userID int64, meta *arxiv.Metadata, status domain.ReadingStatus, progress float64) (*PaperAction, error) {
	if _, err := domain.ParseReadingStatus(string(status)); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.StatusAddedToLibrary
	}
	if err := domain.ValidateProgress(progress); err != nil {
		return nil, err
	}
	return f.fromMetadata(userID, arxiv.CanonicalURL(meta.CanonicalID()), meta, status, progress)
}

func (f *Factory) fromMetadata(userID int64, url string, meta *arxiv.Metadata, status domain.ReadingStatus, progress float64) (*PaperAction, error) {
	id := meta.CanonicalID()
	// Without the entry URI an old-style id has lost its archive prefix; the
	// URL still carries it.
	if derived := arxiv.IDFromURL(url); strings.HasSuffix(derived, "/"+id) {
		id = derived
	}

	metadataStr, err := json.Marshal(domain.ArxivMetadata{
		ArxivID:       id,
		ArxivURL:      url,
		Abstract:      meta.Abstract,
		Categories:    meta.Categories,
		Comment:       meta.Comment,
		Links:         meta.Links,
		PublishedDate: meta.PublishedDate,
		UpdatedDate:   meta.UpdatedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("encode arxiv metadata: %w", err)
	}

	now := f.now()
	return &PaperAction{
		Paper: domain.PaperFields{
			Title:       meta.Title,
			Authors:     meta.Authors,
			Preview:     meta.Abstract,
			URL:         arxiv.CanonicalURL(id),
			Source:      domain.SourceArxiv,
			MetadataStr: string(metadataStr),
			CreatedAt:   now,
		},
		Update: domain.UpdateFields{
			UserID:          userID,
			Message:         domain.MessageAddedToLibrary,
			ReadingStatus:   status,
			ReadingProgress: progress,
			CreatedAt:       now,
		},
	}, nil
}

// NewUser builds a user. Email format and uniqueness are left to the store.
func (f *Factory) NewUser(email, name, username string) domain.UserFields {
	f.log.Info("creating new user", "email", email, "name", name, "username", username)
	return domain.UserFields{
		Email:     email,
		Name:      name,
		Username:  username,
		CreatedAt: f.now(),
	}
}
