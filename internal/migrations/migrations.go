package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Run applies all pending migrations against db.
func Run(db *sql.DB) error {
	return RunContext(context.Background(), db)
}

// RunContext is Run with a caller supplied context. goose's own logging is
// silenced; the caller logs the outcome.
func RunContext(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(fs)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(fs)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("setting dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
