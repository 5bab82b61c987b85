package engine

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Row is one result row. Values are kept in result-column order and the row
// marshals to a JSON object whose keys follow that order.
type Row struct {
	Columns []string
	Values  []any
}

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default *string
	PK      int // 1-based position in the primary key, 0 if not part of it
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := 0
	for i, col := range r.Columns {
		if last := lastIndex(r.Columns, col); last != i {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		written++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func lastIndex(cols []string, name string) int {
	for i := len(cols) - 1; i >= 0; i-- {
		if cols[i] == name {
			return i
		}
	}
	return -1
}

// scanRows drains rows into Row values.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	temporal := make([]bool, len(types))
	for i, ct := range types {
		temporal[i] = isTemporalType(ct.DatabaseTypeName())
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		for i, v := range values {
			switch v := v.(type) {
			case []byte:
				// BLOB and some TEXT values come back as []byte
				values[i] = string(v)
			case time.Time:
				// The driver parses text in date columns; show what is stored.
				if temporal[i] {
					values[i] = formatStoredTime(v)
				}
			}
		}
		result = append(result, Row{Columns: cols, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// isTemporalType reports whether a declared column type makes the driver
// parse its text values into time.Time.
func isTemporalType(declared string) bool {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "DATE", "DATETIME", "TIMESTAMP":
		return true
	}
	return false
}

// formatStoredTime renders t in SQLite's text form: a bare date at midnight,
// otherwise date and time, with fractional seconds and offset only when set.
func formatStoredTime(t time.Time) string {
	h, m, sec := t.Clock()
	if h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}
	layout := "2006-01-02 15:04:05.999999999"
	if t.Location() != time.UTC {
		layout += "-07:00"
	}
	return t.Format(layout)
}
