// Package seed loads the sample practice tables into a database with
// embedded goose migrations.
package seed

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func setup() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Apply runs every pending sample-table migration.
func Apply(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply sample tables: %w", err)
	}
	return nil
}

// Reset rolls every sample-table migration back.
func Reset(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to remove sample tables: %w", err)
	}
	return nil
}

// Version returns the applied sample-data version, 0 when none is applied.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
