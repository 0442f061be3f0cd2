// Package repository selects a storage backend from a database URL and
// bundles its repositories.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/repository/postgres"
	"github.com/goodpapers/backend/internal/repository/sqlite"
)

// Store holds one backend's repositories.
type Store struct {
	Papers     domain.PaperRepository
	Users      domain.UserRepository
	Updates    domain.UpdateRepository
	UserPapers domain.UserPaperRepository
	Analyses   domain.AnalysisRepository

	migrate func(context.Context) error
	close   func() error
}

// Open connects to the database named by url. postgres:// and
// postgresql:// URLs use PostgreSQL; sqlite://<path>, file:<path> and bare
// paths use SQLite.
func Open(ctx context.Context, url string, log *logger.Logger) (*Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pool, err := postgres.Connect(ctx, url, log)
		if err != nil {
			return nil, err
		}
		return FromPostgres(pool), nil
	case url == "":
		return nil, fmt.Errorf("database url is empty")
	default:
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "file:")
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
		}
		log.Info("opened sqlite database", "path", path)
		return FromSQLite(db), nil
	}
}

func FromPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		Papers:     postgres.NewPaperRepository(pool),
		Users:      postgres.NewUserRepository(pool),
		Updates:    postgres.NewUpdateRepository(pool),
		UserPapers: postgres.NewUserPaperRepository(pool),
		Analyses:   postgres.NewAnalysisRepository(pool),
		migrate:    func(ctx context.Context) error { return postgres.Migrate(ctx, pool) },
		close:      func() error { pool.Close(); return nil },
	}
}

func FromSQLite(db *sql.DB) *Store {
	return &Store{
		Papers:     sqlite.NewPaperRepository(db),
		Users:      sqlite.NewUserRepository(db),
		Updates:    sqlite.NewUpdateRepository(db),
		UserPapers: sqlite.NewUserPaperRepository(db),
		Analyses:   sqlite.NewAnalysisRepository(db),
		migrate:    func(ctx context.Context) error { return sqlite.Migrate(ctx, db) },
		close:      db.Close,
	}
}

// Migrate creates the schema if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

func (s *Store) Close() error {
	return s.close()
}
