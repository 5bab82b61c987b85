// Package engine wraps the embedded SQLite database behind the few calls the
// rest of SQLPad needs: run a query, run a statement, and read the catalog.
//
// Errors from Query and Exec are returned exactly as the driver reports them so
// callers can surface the engine's message verbatim.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// DriverName is the database/sql driver used for the practice database.
const DriverName = "sqlite"

// DB is the single shared connection to the practice database.
type DB struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path.
// Use ":memory:" for an in-memory database.
func Open(path string, logger *slog.Logger) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection shared by every request. The engine serializes
	// statements on it, and an in-memory database lives only as long as
	// its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	d := New(db, logger)
	d.path = path
	d.logger.Debug("opened database", "path", path)
	return d, nil
}

// New wraps an already opened handle.
func New(db *sql.DB, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DB{db: db, logger: logger}
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	d.logger.Debug("closing database connection")
	return d.db.Close()
}

// Path returns the path the database was opened with, if any.
func (d *DB) Path() string {
	return d.path
}

// SQL exposes the underlying handle for tooling such as migrations.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Query runs a statement that returns rows and collects all of them.
func (d *DB) Query(ctx context.Context, query string) ([]Row, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows)
}

// Exec runs a statement and returns the number of rows it changed.
// Statements that change no rows (DDL, PRAGMA) return 0.
//
// SQLite's per-statement change count is left over from the last
// INSERT/UPDATE/DELETE, so it is only trusted when total_changes() moved
// across the statement. Both reads happen on the same connection.
func (d *DB) Exec(ctx context.Context, stmt string) (int64, error) {
	if d.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = conn.Close() }()

	before, beforeErr := totalChanges(ctx, conn)

	res, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	if beforeErr != nil {
		d.logger.Debug("change counter unavailable, using driver count", "error", beforeErr)
		return n, nil
	}
	after, err := totalChanges(ctx, conn)
	if err != nil {
		d.logger.Debug("change counter unavailable, using driver count", "error", err)
		return n, nil
	}
	if after == before {
		return 0, nil
	}
	return n, nil
}

func totalChanges(ctx context.Context, conn *sql.Conn) (int64, error) {
	var n int64
	if err := conn.QueryRowContext(ctx, "SELECT total_changes()").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TableInfo returns the raw column definitions reported by PRAGMA table_info.
// SQLite reports an unknown table as zero columns, not as an error.
func (d *DB) TableInfo(ctx context.Context, table string) ([]ColumnInfo, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	// PRAGMA arguments cannot be bound, so the name is quoted instead.
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var notNull int
		var dflt sql.NullString
		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &notNull, &dflt, &col.PK); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		col.NotNull = notNull != 0
		if dflt.Valid {
			col.Default = &dflt.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

// ListTables returns the user tables in catalog order. Tables owned by SQLite
// itself (sqlite_*) and by the migration tool (goose_*) are excluded.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE 'goose_%'
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// CountRows returns SELECT COUNT(*) for a table.
func (d *DB) CountRows(ctx context.Context, table string) (int64, error) {
	if d.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	var n int64
	//nolint:gosec // table names come from the catalog and are quoted
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// QuoteIdent quotes an identifier for interpolation into SQL text.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
