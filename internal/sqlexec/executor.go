package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Message returned for an empty submission.
const emptyStatementMessage = "Query cannot be empty."

// Executor runs one submitted statement and shapes the result.
//
// For a mutating statement it snapshots the target table, runs the statement
// and snapshots the table again. The three steps are not wrapped in a
// transaction, so a concurrent writer may land between them.
type Executor struct {
	eng       Engine
	inspector *Inspector
	logger    *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(eng Engine, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		eng:       eng,
		inspector: NewInspector(eng),
		logger:    logger,
	}
}

// Execute classifies text and runs it. Failures are returned as an
// ErrorResult; Execute never returns a nil Result.
func (e *Executor) Execute(ctx context.Context, text string) Result {
	stmt, err := Classify(text)
	if err != nil {
		return ErrorResult{Message: emptyStatementMessage, Status: http.StatusBadRequest}
	}

	e.logger.Debug("executing statement", "kind", stmt.Kind, "table", stmt.Table, "verb", stmt.Verb())

	if stmt.IsRead() {
		return e.read(ctx, stmt)
	}
	return e.mutate(ctx, stmt)
}

func (e *Executor) read(ctx context.Context, stmt Statement) Result {
	rows, err := e.eng.Query(ctx, stmt.Text)
	if err != nil {
		return e.fail(stmt, &EngineError{Op: "query", Table: stmt.Table, Err: err})
	}
	return QueryResult{
		Message: fmt.Sprintf("%d rows retrieved.", len(rows)),
		Data:    rows,
	}
}

func (e *Executor) mutate(ctx context.Context, stmt Statement) Result {
	previous, err := e.inspector.Snapshot(ctx, stmt.Table)
	if err != nil {
		if IsNoSuchTable(err) && !stmt.CreatesTable() {
			return e.fail(stmt, err)
		}
		e.logger.Debug("using empty snapshot before statement", "table", stmt.Table, "error", err)
		previous = EmptySnapshot()
	}

	affected, err := e.eng.Exec(ctx, stmt.Text)
	if err != nil {
		return e.fail(stmt, &EngineError{Op: "exec", Table: stmt.Table, Err: err})
	}

	updated, err := e.inspector.Snapshot(ctx, stmt.Table)
	if err != nil {
		// DROP TABLE leaves nothing to read.
		if !IsNoSuchTable(err) {
			return e.fail(stmt, err)
		}
		updated = EmptySnapshot()
	}

	e.logger.Debug("statement executed", "verb", stmt.Verb(), "table", stmt.Table, "affected_rows", affected)

	return DualQueryResult{
		Message:      mutationMessage(stmt),
		PreviousData: previous,
		UpdatedData:  updated,
		AffectedRows: affected,
	}
}

func (e *Executor) fail(stmt Statement, err error) ErrorResult {
	var engErr *EngineError
	op := "unknown"
	if errors.As(err, &engErr) {
		op = engErr.Op
	}
	e.logger.Warn("statement failed", "op", op, "verb", stmt.Verb(), "table", stmt.Table, "error", err)
	return ErrorResult{
		Message: "SQL ERROR: " + err.Error(),
		Status:  http.StatusInternalServerError,
	}
}

// mutationMessage describes a successful mutating statement.
func mutationMessage(stmt Statement) string {
	if stmt.Table != "" {
		switch {
		case strings.HasPrefix(stmt.Upper, "CREATE"):
			return fmt.Sprintf("Table '%s' created successfully.", stmt.Table)
		case strings.HasPrefix(stmt.Upper, "DROP"):
			return fmt.Sprintf("Table '%s' dropped successfully.", stmt.Table)
		case strings.HasPrefix(stmt.Upper, "ALTER"):
			return fmt.Sprintf("Table '%s' altered successfully.", stmt.Table)
		}
	}
	return stmt.Verb() + " executed successfully."
}
