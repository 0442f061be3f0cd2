package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goodpapers/backend/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUserAndPaper(t *testing.T, db *sql.DB) (*domain.User, *domain.Paper) {
	t.Helper()
	ctx := context.Background()
	user, err := NewUserRepository(db).Upsert(ctx, domain.UserFields{
		Email: "test@example.com", Name: "Test User", Username: "testuser", CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("user Upsert() error = %v", err)
	}
	paper, err := NewPaperRepository(db).Upsert(ctx, domain.PaperFields{
		Title: "Attention Is All You Need", Authors: []string{"A", "B"},
		URL: "https://arxiv.org/abs/1706.03762", Source: domain.SourceArxiv, CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("paper Upsert() error = %v", err)
	}
	return user, paper
}

func TestMigrate_Repeatable(t *testing.T) {
	db := newTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestPaperRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaperRepository(db)
	ctx := context.Background()

	p1, err := repo.Upsert(ctx, domain.PaperFields{
		Title: "Draft", Authors: []string{"A"}, Preview: "p",
		URL: "https://arxiv.org/abs/1706.03762", Source: domain.SourceArxiv, CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if p1.ID == 0 {
		t.Fatal("no id assigned")
	}

	p2, err := repo.Upsert(ctx, domain.PaperFields{
		Title: "Final", Authors: []string{"A", "B"}, Preview: "q",
		URL: "https://arxiv.org/abs/1706.03762", Source: domain.SourceArxiv,
		MetadataStr: `{"arxiv_id":"1706.03762"}`, CreatedAt: t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if p2.ID != p1.ID {
		t.Errorf("id changed on re-upsert: %d -> %d", p1.ID, p2.ID)
	}
	if p2.Title != "Final" || !reflect.DeepEqual(p2.Authors, []string{"A", "B"}) || p2.MetadataStr == "" {
		t.Errorf("fields not refreshed: %+v", p2)
	}
	if !p2.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", p2.CreatedAt, t0)
	}

	got, err := repo.GetByURL(ctx, "https://arxiv.org/abs/1706.03762")
	if err != nil || got == nil || got.ID != p1.ID {
		t.Fatalf("GetByURL() = %+v, %v", got, err)
	}
	missing, err := repo.GetByID(ctx, p1.ID+1)
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %+v, %v; want nil, nil", missing, err)
	}

	list, err := repo.ListByIDs(ctx, []int64{p1.ID, p1.ID + 1})
	if err != nil || len(list) != 1 {
		t.Errorf("ListByIDs() = %v, %v", list, err)
	}
}

func TestUserRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u1, err := repo.Upsert(ctx, domain.UserFields{Email: "a@x.org", Name: "A", Username: "a", CreatedAt: t0})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	u2, err := repo.Upsert(ctx, domain.UserFields{Email: "a@x.org", Name: "Renamed", Username: "a2", CreatedAt: t0.Add(time.Hour)})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if u1.ID != u2.ID || u2.Name != "Renamed" || u2.Username != "a2" {
		t.Errorf("re-upsert = %+v", u2)
	}

	byEmail, err := repo.GetByEmail(ctx, "a@x.org")
	if err != nil || byEmail == nil || byEmail.ID != u1.ID {
		t.Errorf("GetByEmail() = %+v, %v", byEmail, err)
	}
}

func TestUserRepository_UsernameTakenIsValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, domain.UserFields{Email: "a@x.org", Name: "A", Username: "same", CreatedAt: t0}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	_, err := repo.Upsert(ctx, domain.UserFields{Email: "b@x.org", Name: "B", Username: "same", CreatedAt: t0})
	if !domain.IsValidation(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestUpdateRepository_OverwritesPair(t *testing.T) {
	db := newTestDB(t)
	user, paper := seedUserAndPaper(t, db)
	repo := NewUpdateRepository(db)
	ctx := context.Background()

	u1, err := repo.Upsert(ctx, paper.ID, domain.UpdateFields{
		UserID: user.ID, Message: domain.MessageAddedToLibrary, ReadingStatus: domain.StatusWantToRead, CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	later := t0.Add(24 * time.Hour)
	u2, err := repo.Upsert(ctx, paper.ID, domain.UpdateFields{
		UserID: user.ID, Message: domain.MessageAddedToLibrary, ReadingStatus: domain.StatusReading,
		ReadingProgress: 0.25, CreatedAt: later,
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if u2.ID != u1.ID {
		t.Errorf("update id changed: %d -> %d", u1.ID, u2.ID)
	}
	if u2.ReadingStatus != domain.StatusReading || u2.ReadingProgress != 0.25 || !u2.CreatedAt.Equal(later) {
		t.Errorf("not overwritten: %+v", u2)
	}

	byUser, err := repo.ListByUser(ctx, user.ID)
	if err != nil || len(byUser) != 1 {
		t.Fatalf("ListByUser() = %v, %v", byUser, err)
	}
	byPaper, err := repo.ListByPaper(ctx, paper.ID)
	if err != nil || len(byPaper) != 1 {
		t.Fatalf("ListByPaper() = %v, %v", byPaper, err)
	}
	got, err := repo.Get(ctx, user.ID, paper.ID)
	if err != nil || got == nil || got.ID != u1.ID {
		t.Errorf("Get() = %+v, %v", got, err)
	}
}

func TestUpdateRepository_Constraints(t *testing.T) {
	db := newTestDB(t)
	user, paper := seedUserAndPaper(t, db)
	repo := NewUpdateRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		paperID int64
		update  domain.UpdateFields
	}{
		{"unknown paper", paper.ID + 100, domain.UpdateFields{UserID: user.ID, ReadingStatus: domain.StatusReading, CreatedAt: t0}},
		{"unknown user", paper.ID, domain.UpdateFields{UserID: user.ID + 100, ReadingStatus: domain.StatusReading, CreatedAt: t0}},
		{"progress over one", paper.ID, domain.UpdateFields{UserID: user.ID, ReadingStatus: domain.StatusReading, ReadingProgress: 1.5, CreatedAt: t0}},
		{"unknown status", paper.ID, domain.UpdateFields{UserID: user.ID, ReadingStatus: "halfway", CreatedAt: t0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.Upsert(ctx, tt.paperID, tt.update)
			if err == nil {
				t.Fatalf("Upsert() = %+v, want constraint error", u)
			}
			if domain.IsValidation(err) {
				t.Errorf("error = %v, store errors other than unique violations must pass through", err)
			}
		})
	}
}

func TestUserPaperRepository_Idempotent(t *testing.T) {
	db := newTestDB(t)
	user, paper := seedUserAndPaper(t, db)
	repo := NewUserPaperRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := repo.Upsert(ctx, domain.UserPaperRecord{UserID: user.ID, PaperID: paper.ID})
		if err != nil {
			t.Fatalf("Upsert() #%d error = %v", i+1, err)
		}
		if rec.UserID != user.ID || rec.PaperID != paper.ID {
			t.Errorf("Upsert() = %+v", rec)
		}
	}

	ids, err := repo.ListPaperIDs(ctx, user.ID)
	if err != nil || !reflect.DeepEqual(ids, []int64{paper.ID}) {
		t.Errorf("ListPaperIDs() = %v, %v", ids, err)
	}
	missing, err := repo.Get(ctx, user.ID, paper.ID+1)
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %+v, %v", missing, err)
	}
}

func TestAnalysisRepository(t *testing.T) {
	db := newTestDB(t)
	_, paper := seedUserAndPaper(t, db)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, domain.PaperAIAnalysis{PaperID: paper.ID, Prompt: "summarize", Response: "short", CreatedAt: t0})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	list, err := repo.ListByPaper(ctx, paper.ID)
	if err != nil || len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("ListByPaper() = %v, %v", list, err)
	}
}
