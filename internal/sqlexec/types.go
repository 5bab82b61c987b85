// Package sqlexec runs user-submitted SQL against the practice database and
// describes what changed.
//
// The package is a thin layer over the engine: Classify decides how a
// statement is routed, Inspector snapshots a table, Executor runs a statement
// and shapes the result, and Aggregator summarizes the whole schema.
package sqlexec

import (
	"context"
	"sort"

	"github.com/leapstack-labs/sqlpad/internal/engine"
)

// Engine is the database capability the package consumes.
// *engine.DB implements it.
type Engine interface {
	Query(ctx context.Context, query string) ([]engine.Row, error)
	Exec(ctx context.Context, stmt string) (int64, error)
	TableInfo(ctx context.Context, table string) ([]engine.ColumnInfo, error)
	ListTables(ctx context.Context) ([]string, error)
	CountRows(ctx context.Context, table string) (int64, error)
}

// ColumnDescriptor describes one column of a table.
type ColumnDescriptor struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"pk" yaml:"pk"`
}

// TableSnapshot is the full content and shape of one table at one instant.
type TableSnapshot struct {
	Rows    []engine.Row       `json:"rows"`
	Columns []ColumnDescriptor `json:"columns"`
}

// EmptySnapshot is the snapshot of a table that does not exist.
func EmptySnapshot() TableSnapshot {
	return TableSnapshot{Rows: []engine.Row{}, Columns: []ColumnDescriptor{}}
}

// TableSummary is the schema entry for one table.
type TableSummary struct {
	Columns []ColumnDescriptor `json:"columns" yaml:"columns"`
	Rows    int64              `json:"rows" yaml:"rows"`
}

// SchemaSummary maps table names to their summary.
type SchemaSummary map[string]TableSummary

// Tables returns the table names in sorted order.
func (s SchemaSummary) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
