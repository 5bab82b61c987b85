package sqlexec

import (
	"regexp"
	"strings"
)

// Kind tells reads apart from statements that may change schema or data.
type Kind int

const (
	KindRead     Kind = iota // SELECT
	KindMutation             // everything else: DDL, DML, PRAGMA, ...
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

// tableRef finds the first FROM/INTO/TABLE clause and captures the word after
// it, with optional surrounding quotes.
var tableRef = regexp.MustCompile(`(?i)\b(FROM|INTO|TABLE)\s+['"]?(\w+)['"]?`)

// Statement is a classified SQL statement.
type Statement struct {
	Text  string // trimmed statement as submitted
	Upper string // Text upper-cased
	Kind  Kind
	Table string // target table, empty when no clause was found
}

// Classify trims text, decides whether it is a read, and extracts its target
// table.
//
// This is a lexical best-effort match, not a parser. Only the first
// FROM/INTO/TABLE occurrence counts, so joins, subqueries and statements such
// as "CREATE TABLE IF NOT EXISTS t" or "UPDATE t SET ..." do not yield the
// table a parser would find.
func Classify(text string) (Statement, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Statement{}, ErrEmptyStatement
	}

	stmt := Statement{
		Text:  trimmed,
		Upper: strings.ToUpper(trimmed),
		Kind:  KindMutation,
	}
	if strings.HasPrefix(stmt.Upper, "SELECT") {
		stmt.Kind = KindRead
	}
	if m := tableRef.FindStringSubmatch(trimmed); m != nil {
		stmt.Table = m[2]
	}
	return stmt, nil
}

// IsRead reports whether the statement is a SELECT.
func (s Statement) IsRead() bool {
	return s.Kind == KindRead
}

// Verb returns the first whitespace-delimited word, upper-cased.
func (s Statement) Verb() string {
	fields := strings.Fields(s.Upper)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CreatesTable reports whether the statement creates a table, in which case
// the table legitimately does not exist before it runs.
func (s Statement) CreatesTable() bool {
	return strings.Contains(s.Upper, "CREATE TABLE")
}
