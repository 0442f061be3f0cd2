// Package postgres implements the library repositories on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/logger"
)

//go:embed schema.sql
var schema string

const (
	queryTimeout   = 5 * time.Second
	connectRetries = 5

	uniqueViolation = "23505"
)

// Connect opens a pool and pings it, retrying with a linear backoff while
// the database comes up.
func Connect(ctx context.Context, url string, log *logger.Logger) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		pool, err := ping(ctx, url)
		if err == nil {
			log.Info("connected to postgres", "attempt", attempt)
			return pool, nil
		}
		lastErr = err
		log.Warn("postgres not ready", "attempt", attempt, "error", err)
		if attempt == connectRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", connectRetries, lastErr)
}

func ping(ctx context.Context, url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate creates any missing tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// mapError turns a unique violation into a validation error. Upserts resolve
// conflicts on their own key, so a violation that still surfaces is on some
// other unique column. Anything else is returned as is.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &domain.ValidationError{Field: pgErr.ConstraintName, Msg: pgErr.Message}
	}
	return err
}
