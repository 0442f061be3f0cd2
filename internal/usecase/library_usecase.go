package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/records"
	"github.com/goodpapers/backend/pkg/arxiv"
)

var (
	ErrPaperNotInLibrary = errors.New("paper not in library")
)

// BatchSource fetches many arXiv records in one request, dropping the ones
// that fail. *arxiv.Client satisfies it.
type BatchSource interface {
	FetchByIDs(ctx context.Context, ids []string) []arxiv.Metadata
}

// LibraryUsecase writes the records a user action produces.
type LibraryUsecase struct {
	papers     domain.PaperRepository
	users      domain.UserRepository
	updates    domain.UpdateRepository
	userPapers domain.UserPaperRepository
	factory    *records.Factory
	batch      BatchSource
	log        *logger.Logger
}

func NewLibraryUsecase(
	papers domain.PaperRepository,
	users domain.UserRepository,
	updates domain.UpdateRepository,
	userPapers domain.UserPaperRepository,
	factory *records.Factory,
	batch BatchSource,
	log *logger.Logger,
) *LibraryUsecase {
	return &LibraryUsecase{
		papers:     papers,
		users:      users,
		updates:    updates,
		userPapers: userPapers,
		factory:    factory,
		batch:      batch,
		log:        log,
	}
}

type AddPaperInput struct {
	UserID          int64
	URL             string
	Source          string
	ReadingStatus   domain.ReadingStatus
	ReadingProgress float64
}

// AddPaperResult holds the persisted rows of one add, each with its store id.
type AddPaperResult struct {
	Paper  *domain.Paper           `json:"paper"`
	Update *domain.Update          `json:"update"`
	Record *domain.UserPaperRecord `json:"user_paper_record"`
}

// AddPaper fetches the paper at in.URL and writes the paper, the user's
// update and the library record, in that order. The first failure stops the
// chain; nothing is rolled back, and running the same add again completes it.
func (u *LibraryUsecase) AddPaper(ctx context.Context, in AddPaperInput) (*AddPaperResult, error) {
	log := u.log.With("action_id", uuid.NewString(), "user_id", in.UserID)

	if in.Source != domain.SourceArxiv {
		return nil, &domain.ValidationError{Field: "source", Msg: fmt.Sprintf("unsupported source %q", in.Source)}
	}
	if err := u.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	log.Info("adding paper", "url", in.URL, "reading_status", in.ReadingStatus)
	action, err := u.factory.NewArxivPaper(ctx, in.UserID, in.URL, in.ReadingStatus, in.ReadingProgress)
	if err != nil {
		log.Warn("could not build paper", "url", in.URL, "error", err)
		return nil, err
	}
	return u.persist(ctx, log, action)
}

// AddPapersByIDs adds every paper among ids that arXiv returns in a single
// batch request. Ids that fail to fetch or parse are skipped; a store error
// stops the run and returns what was written so far.
func (u *LibraryUsecase) AddPapersByIDs(ctx context.Context, userID int64, ids []string, status domain.ReadingStatus) ([]*AddPaperResult, error) {
	log := u.log.With("action_id", uuid.NewString(), "user_id", userID)

	if _, err := domain.ParseReadingStatus(string(status)); err != nil {
		return nil, err
	}
	if err := u.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	metas := u.batch.FetchByIDs(ctx, ids)
	log.Info("batch fetched", "requested", len(ids), "fetched", len(metas))

	results := make([]*AddPaperResult, 0, len(metas))
	for i := range metas {
		action, err := u.factory.FromMetadata(userID, &metas[i], status, 0)
		if err != nil {
			return results, err
		}
		res, err := u.persist(ctx, log, action)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// requireUser resolves the user before anything is fetched or written.
func (u *LibraryUsecase) requireUser(ctx context.Context, id int64) error {
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (u *LibraryUsecase) persist(ctx context.Context, log *logger.Logger, action *records.PaperAction) (*AddPaperResult, error) {
	paper, err := u.papers.Upsert(ctx, action.Paper)
	if err != nil {
		log.Error("paper upsert failed", "url", action.Paper.URL, "error", err)
		return nil, err
	}

	update, err := u.updates.Upsert(ctx, paper.ID, action.Update)
	if err != nil {
		log.Error("update upsert failed", "paper_id", paper.ID, "error", err)
		return nil, err
	}

	record, err := u.userPapers.Upsert(ctx, domain.UserPaperRecord{UserID: action.Update.UserID, PaperID: paper.ID})
	if err != nil {
		log.Error("library record upsert failed", "paper_id", paper.ID, "error", err)
		return nil, err
	}

	log.Info("paper added", "paper_id", paper.ID, "update_id", update.ID)
	return &AddPaperResult{Paper: paper, Update: update, Record: record}, nil
}

// CreateUser writes a user keyed on email. An existing email keeps its id.
func (u *LibraryUsecase) CreateUser(ctx context.Context, email, name, username string) (*domain.User, error) {
	user, err := u.users.Upsert(ctx, u.factory.NewUser(email, name, username))
	if err != nil {
		u.log.Error("user upsert failed", "email", email, "error", err)
		return nil, err
	}
	return user, nil
}

// UpdateReadingState overwrites the user's update for a paper already in
// their library.
func (u *LibraryUsecase) UpdateReadingState(ctx context.Context, userID, paperID int64, status domain.ReadingStatus, progress float64) (*domain.Update, error) {
	status, err := domain.ParseReadingStatus(string(status))
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateProgress(progress); err != nil {
		return nil, err
	}

	rec, err := u.userPapers.Get(ctx, userID, paperID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrPaperNotInLibrary
	}

	update, err := u.updates.Upsert(ctx, paperID, domain.UpdateFields{
		UserID:          userID,
		Message:         domain.MessageReadingStateChanged,
		ReadingStatus:   status,
		ReadingProgress: progress,
		CreatedAt:       u.factory.Now(),
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("reading state updated", "user_id", userID, "paper_id", paperID, "reading_status", status)
	return update, nil
}
