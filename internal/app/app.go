// Package app wires configuration, storage, the arXiv client and the use
// cases together for the binaries.
package app

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/goodpapers/backend/internal/config"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/records"
	"github.com/goodpapers/backend/internal/repository"
	"github.com/goodpapers/backend/internal/usecase"
	"github.com/goodpapers/backend/pkg/arxiv"
)

type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   *repository.Store
	Arxiv   *arxiv.Client
	Library *usecase.LibraryUsecase
	Query   *usecase.QueryUsecase
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := repository.Open(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	client := arxiv.NewClient(
		arxiv.WithBaseURL(cfg.Arxiv.BaseURL),
		arxiv.WithHTTPClient(&http.Client{Timeout: cfg.Arxiv.Timeout}),
		arxiv.WithRateLimiter(rate.NewLimiter(rate.Every(cfg.Arxiv.RateInterval), 1)),
		arxiv.WithLogger(log.With("component", "arxiv")),
	)
	factory := records.NewFactory(client, log.With("component", "records"))

	return &App{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Arxiv:   client,
		Library: usecase.NewLibraryUsecase(store.Papers, store.Users, store.Updates, store.UserPapers, factory, client, log),
		Query:   usecase.NewQueryUsecase(store.Papers, store.Users, store.Updates, store.UserPapers, store.Analyses, log),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
