package sqlexec

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultSchemaConcurrency bounds how many tables are summarized at once.
const DefaultSchemaConcurrency = 4

// Aggregator builds a summary of every user table.
type Aggregator struct {
	eng         Engine
	inspector   *Inspector
	concurrency int
	logger      *slog.Logger
}

// NewAggregator creates an Aggregator. A concurrency below 1 means
// DefaultSchemaConcurrency.
func NewAggregator(eng Engine, concurrency int, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = DefaultSchemaConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		eng:         eng,
		inspector:   NewInspector(eng),
		concurrency: concurrency,
		logger:      logger,
	}
}

type tableOutcome struct {
	name    string
	summary TableSummary
	err     error
}

// FullSchema lists the user tables and, for each one, fetches its columns and
// row count. A table whose fetch fails is left out of the summary; only a
// failure to list the tables is returned as an error.
func (a *Aggregator) FullSchema(ctx context.Context) (SchemaSummary, error) {
	tables, err := a.eng.ListTables(ctx)
	if err != nil {
		return nil, &EngineError{Op: "list tables", Err: err}
	}

	summary := SchemaSummary{}
	if len(tables) == 0 {
		return summary, nil
	}

	outcomes := make([]tableOutcome, len(tables))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, name := range tables {
		g.Go(func() error {
			outcomes[i] = a.summarize(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			a.logger.Debug("omitting table from schema", "table", o.name, "error", o.err)
			continue
		}
		summary[o.name] = o.summary
	}
	return summary, nil
}

// summarize fetches the columns and the row count of one table in parallel.
func (a *Aggregator) summarize(ctx context.Context, table string) tableOutcome {
	var (
		columns []ColumnDescriptor
		count   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columns, err = a.inspector.Columns(gctx, table)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = a.eng.CountRows(gctx, table)
		if err != nil {
			return &EngineError{Op: "count", Table: table, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return tableOutcome{name: table, err: err}
	}

	return tableOutcome{
		name:    table,
		summary: TableSummary{Columns: columns, Rows: count},
	}
}
