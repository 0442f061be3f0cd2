package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/pkg/arxiv"
)

// memStore is an in-memory store with the same conflict keys as the SQL
// backends.
type memStore struct {
	mu         sync.Mutex
	papers     map[int64]*domain.Paper
	users      map[int64]*domain.User
	updates    map[[2]int64]*domain.Update // (paper_id, user_id)
	userPapers map[[2]int64]bool           // (user_id, paper_id)
	analyses   []*domain.PaperAIAnalysis
	nextID     int64

	failUpdates error
}

func newMemStore() *memStore {
	return &memStore{
		papers:     map[int64]*domain.Paper{},
		users:      map[int64]*domain.User{},
		updates:    map[[2]int64]*domain.Update{},
		userPapers: map[[2]int64]bool{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// addUser inserts a user with a fixed id.
func (s *memStore) addUser(id int64, email string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{ID: id, UserFields: domain.UserFields{Email: email, Name: email, Username: email}}
	s.users[id] = u
	if id > s.nextID {
		s.nextID = id
	}
	return u
}

type memPapers struct{ *memStore }

func (r memPapers) Upsert(ctx context.Context, f domain.PaperFields) (*domain.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.papers {
		if p.URL == f.URL {
			created := p.CreatedAt
			p.PaperFields = f
			p.CreatedAt = created
			cp := *p
			return &cp, nil
		}
	}
	p := &domain.Paper{ID: r.id(), PaperFields: f}
	r.papers[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r memPapers) GetByID(ctx context.Context, id int64) (*domain.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.papers[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r memPapers) GetByURL(ctx context.Context, url string) (*domain.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.papers {
		if p.URL == url {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memPapers) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Paper
	for _, id := range ids {
		if p, ok := r.papers[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memUsers struct{ *memStore }

func (r memUsers) Upsert(ctx context.Context, f domain.UserFields) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == f.Email {
			u.Name, u.Username = f.Name, f.Username
			cp := *u
			return &cp, nil
		}
	}
	u := &domain.User{ID: r.id(), UserFields: f}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type memUpdates struct{ *memStore }

func (r memUpdates) Upsert(ctx context.Context, paperID int64, f domain.UpdateFields) (*domain.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates != nil {
		return nil, r.failUpdates
	}
	key := [2]int64{paperID, f.UserID}
	if u, ok := r.updates[key]; ok {
		u.UpdateFields = f
		cp := *u
		return &cp, nil
	}
	u := &domain.Update{ID: r.id(), PaperID: paperID, UpdateFields: f}
	r.updates[key] = u
	cp := *u
	return &cp, nil
}

func (r memUpdates) Get(ctx context.Context, userID, paperID int64) (*domain.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.updates[[2]int64{paperID, userID}]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUpdates) ListByUser(ctx context.Context, userID int64) ([]*domain.Update, error) {
	return r.list(func(u *domain.Update) bool { return u.UserID == userID }), nil
}

func (r memUpdates) ListByPaper(ctx context.Context, paperID int64) ([]*domain.Update, error) {
	return r.list(func(u *domain.Update) bool { return u.PaperID == paperID }), nil
}

func (r memUpdates) list(match func(*domain.Update) bool) []*domain.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Update
	for _, u := range r.updates {
		if match(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type memUserPapers struct{ *memStore }

func (r memUserPapers) Upsert(ctx context.Context, rec domain.UserPaperRecord) (*domain.UserPaperRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userPapers[[2]int64{rec.UserID, rec.PaperID}] = true
	return &domain.UserPaperRecord{UserID: rec.UserID, PaperID: rec.PaperID}, nil
}

func (r memUserPapers) Get(ctx context.Context, userID, paperID int64) (*domain.UserPaperRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userPapers[[2]int64{userID, paperID}] {
		return &domain.UserPaperRecord{UserID: userID, PaperID: paperID}, nil
	}
	return nil, nil
}

func (r memUserPapers) ListPaperIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for k := range r.userPapers {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memAnalyses struct{ *memStore }

func (r memAnalyses) Create(ctx context.Context, a domain.PaperAIAnalysis) (*domain.PaperAIAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	r.analyses = append(r.analyses, &a)
	return &a, nil
}

func (r memAnalyses) ListByPaper(ctx context.Context, paperID int64) ([]*domain.PaperAIAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaperAIAnalysis
	for _, a := range r.analyses {
		if a.PaperID == paperID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeArxiv serves metadata by id and counts every call.
type fakeArxiv struct {
	mu     sync.Mutex
	byID   map[string]arxiv.Metadata
	calls  int
	failID string
}

func (f *fakeArxiv) FetchByURL(ctx context.Context, url string) (*arxiv.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	id := arxiv.IDFromURL(url)
	m, ok := f.byID[id]
	if !ok || id == f.failID {
		return nil, &arxiv.FetchError{URL: url, Err: errors.New("no such paper")}
	}
	return &m, nil
}

func (f *fakeArxiv) FetchByIDs(ctx context.Context, ids []string) []arxiv.Metadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []arxiv.Metadata
	for _, id := range ids {
		if m, ok := f.byID[id]; ok && id != f.failID {
			out = append(out, m)
		}
	}
	return out
}

// testMetadata mirrors the parser: ArxivID is the last path segment of the
// entry URI, so old-style ids lose their archive there.
func testMetadata(id, title string) arxiv.Metadata {
	return arxiv.Metadata{
		ArxivID:       id[strings.LastIndex(id, "/")+1:] + "v1",
		EntryID:       "http://arxiv.org/abs/" + id + "v1",
		Title:         title,
		Abstract:      "Abstract of " + title + ".",
		Authors:       []string{"Author One", "Author Two"},
		PublishedDate: "2017-06-12",
		UpdatedDate:   "2017-06-12",
		Categories:    []string{"cs.CL"},
		Links:         map[string]string{"alternate": "http://arxiv.org/abs/" + id + "v1"},
	}
}
