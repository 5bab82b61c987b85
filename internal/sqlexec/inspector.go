package sqlexec

import (
	"context"
	"strings"

	"github.com/leapstack-labs/sqlpad/internal/engine"
)

// Inspector reads the rows and column definitions of a single table.
// Nothing is cached; every call goes to the engine.
type Inspector struct {
	eng Engine
}

// NewInspector creates an Inspector.
func NewInspector(eng Engine) *Inspector {
	return &Inspector{eng: eng}
}

// Snapshot returns every row and the columns of table. An empty table name
// yields the empty snapshot without touching the engine.
func (i *Inspector) Snapshot(ctx context.Context, table string) (TableSnapshot, error) {
	if table == "" {
		return EmptySnapshot(), nil
	}

	rows, err := i.eng.Query(ctx, "SELECT * FROM "+engine.QuoteIdent(table))
	if err != nil {
		return TableSnapshot{}, &EngineError{Op: "read", Table: table, Err: err}
	}

	columns, err := i.Columns(ctx, table)
	if err != nil {
		return TableSnapshot{}, err
	}

	if rows == nil {
		rows = []engine.Row{}
	}
	return TableSnapshot{Rows: rows, Columns: columns}, nil
}

// Columns returns the normalized column descriptors of table.
func (i *Inspector) Columns(ctx context.Context, table string) ([]ColumnDescriptor, error) {
	info, err := i.eng.TableInfo(ctx, table)
	if err != nil {
		return nil, &EngineError{Op: "describe", Table: table, Err: err}
	}

	columns := make([]ColumnDescriptor, len(info))
	for n, col := range info {
		columns[n] = ColumnDescriptor{
			Name:       strings.ToLower(col.Name),
			Type:       NormalizeType(col.Type),
			PrimaryKey: col.PK == 1,
		}
	}
	return columns, nil
}

// NormalizeType upper-cases an engine type and drops any size suffix:
// "varchar(255)" becomes "VARCHAR".
func NormalizeType(t string) string {
	t = strings.ToUpper(t)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return t
}
