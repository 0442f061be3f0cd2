// Package sqlite implements the library repositories on an embedded SQLite
// database, for local use and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/goodpapers/backend/internal/domain"
)

//go:embed schema.sql
var schema string

const queryTimeout = 5 * time.Second

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open opens or creates the database at path with foreign keys enforced.
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates any missing tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// mapError turns a unique violation into a validation error. Upserts resolve
// conflicts on their own key, so a violation that still surfaces is on some
// other unique column.
func mapError(err error) error {
	var sqliteErr *driver.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	// "... UNIQUE constraint failed: users.username (2067)"
	msg := sqliteErr.Error()
	code := sqliteErr.Code()
	if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		!(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE constraint failed")) {
		return err
	}
	field := ""
	if i := strings.LastIndex(msg, "failed: "); i >= 0 {
		field, _, _ = strings.Cut(msg[i+len("failed: "):], " ")
	}
	return &domain.ValidationError{Field: field, Msg: "already taken"}
}
