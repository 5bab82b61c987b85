package sqlexec

import (
	"errors"
	"strings"
)

// ErrEmptyStatement is returned when the submitted SQL is empty after trimming.
var ErrEmptyStatement = errors.New("statement is empty")

// EngineError is a failure reported by the database engine. Its message is the
// engine's own message so it can be shown to the user verbatim.
type EngineError struct {
	Op    string // what was being attempted: "read", "describe", "exec", ...
	Table string // empty when the operation is not tied to one table
	Err   error
}

func (e *EngineError) Error() string {
	return e.Err.Error()
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsNoSuchTable reports whether err is the engine's missing-table failure.
func IsNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
