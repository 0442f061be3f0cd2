package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goodpapers/backend/internal/config"
	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/usecase"
)

const feed = `<feed xmlns="http://www.w3.org/2005/Atom"><entry>
<id>http://arxiv.org/abs/1706.03762v7</id><updated>2023-08-02T00:41:18Z</updated>
<published>2017-06-12T17:57:34Z</published><title>Attention Is All You Need</title>
<summary>Transformers.</summary><author><name>Ashish Vaswani</name></author></entry></feed>`

func TestNew_WiresSQLite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer upstream.Close()

	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "app.db")},
		Arxiv: config.ArxivConfig{
			BaseURL:      upstream.URL,
			Timeout:      5 * time.Second,
			RateInterval: time.Millisecond,
		},
	}
	ctx := context.Background()
	a, err := New(ctx, cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if err := a.Store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	user, err := a.Library.CreateUser(ctx, "a@example.com", "A", "a")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	res, err := a.Library.AddPaper(ctx, usecase.AddPaperInput{
		UserID: user.ID, URL: "https://arxiv.org/abs/1706.03762", Source: domain.SourceArxiv,
	})
	if err != nil {
		t.Fatalf("AddPaper() error = %v", err)
	}
	if res.Update.ReadingStatus != domain.StatusAddedToLibrary {
		t.Errorf("ReadingStatus = %q", res.Update.ReadingStatus)
	}
}
