package usecase

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
)

// fetchConcurrency bounds how many users FetchDataForUsers loads at once.
const fetchConcurrency = 4

// QueryUsecase reads library state. It never writes.
type QueryUsecase struct {
	papers     domain.PaperRepository
	users      domain.UserRepository
	updates    domain.UpdateRepository
	userPapers domain.UserPaperRepository
	analyses   domain.AnalysisRepository
	log        *logger.Logger
}

func NewQueryUsecase(
	papers domain.PaperRepository,
	users domain.UserRepository,
	updates domain.UpdateRepository,
	userPapers domain.UserPaperRepository,
	analyses domain.AnalysisRepository,
	log *logger.Logger,
) *QueryUsecase {
	return &QueryUsecase{
		papers:     papers,
		users:      users,
		updates:    updates,
		userPapers: userPapers,
		analyses:   analyses,
		log:        log,
	}
}

func (q *QueryUsecase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := q.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func (q *QueryUsecase) GetPaper(ctx context.Context, id int64) (*domain.Paper, error) {
	paper, err := q.papers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %d: %w", id, domain.ErrNotFound)
	}
	return paper, nil
}

// GetPapersForUser returns the papers in the user's library, by paper id.
func (q *QueryUsecase) GetPapersForUser(ctx context.Context, userID int64) ([]*domain.Paper, error) {
	ids, err := q.userPapers.ListPaperIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return q.papers.ListByIDs(ctx, ids)
}

func (q *QueryUsecase) GetUpdatesForUser(ctx context.Context, userID int64) ([]*domain.Update, error) {
	return q.updates.ListByUser(ctx, userID)
}

func (q *QueryUsecase) GetUpdatesForPaper(ctx context.Context, paperID int64) ([]*domain.Update, error) {
	return q.updates.ListByPaper(ctx, paperID)
}

func (q *QueryUsecase) GetUserPaperRecord(ctx context.Context, userID, paperID int64) (*domain.UserPaperRecord, error) {
	rec, err := q.userPapers.Get(ctx, userID, paperID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("user %d paper %d: %w", userID, paperID, domain.ErrNotFound)
	}
	return rec, nil
}

func (q *QueryUsecase) GetAnalysesForPaper(ctx context.Context, paperID int64) ([]*domain.PaperAIAnalysis, error) {
	return q.analyses.ListByPaper(ctx, paperID)
}

// GetLibrary returns the user's papers, each with the user's update for it,
// most recently updated first.
func (q *QueryUsecase) GetLibrary(ctx context.Context, userID int64) ([]*domain.LibraryEntry, error) {
	if _, err := q.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	papers, err := q.GetPapersForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates, err := q.updates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return joinLibrary(papers, updates), nil
}

func joinLibrary(papers []*domain.Paper, updates []*domain.Update) []*domain.LibraryEntry {
	byPaper := make(map[int64]*domain.Update, len(updates))
	for _, u := range updates {
		byPaper[u.PaperID] = u
	}

	entries := make([]*domain.LibraryEntry, 0, len(papers))
	for _, p := range papers {
		entries = append(entries, &domain.LibraryEntry{Paper: p, Update: byPaper[p.ID]})
	}

	// Entries without an update sort last.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Update, entries[j].Update
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return entries[i].Paper.ID > entries[j].Paper.ID
		}
	})
	return entries
}

// UserData is everything the library holds for one user.
type UserData struct {
	User    *domain.User     `json:"user"`
	Papers  []*domain.Paper  `json:"papers"`
	Updates []*domain.Update `json:"updates"`
}

// FetchDataForUsers loads each user with their papers and updates. Users
// that do not exist are left out; the order of the rest follows ids.
func (q *QueryUsecase) FetchDataForUsers(ctx context.Context, ids []int64) ([]*UserData, error) {
	results := make([]*UserData, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			user, err := q.users.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if user == nil {
				q.log.Debug("user not found, skipping", "user_id", id)
				return nil
			}
			papers, err := q.GetPapersForUser(ctx, id)
			if err != nil {
				return err
			}
			updates, err := q.updates.ListByUser(ctx, id)
			if err != nil {
				return err
			}
			results[i] = &UserData{User: user, Papers: papers, Updates: updates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
