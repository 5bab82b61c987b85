package sqlrunner

import (
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
	"github.com/leapstack-labs/sqlpad/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the SQL runner feature.
type Handlers struct {
	executor   *sqlexec.Executor
	aggregator *sqlexec.Aggregator
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng sqlexec.Engine, schemaConcurrency int, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		executor:   sqlexec.NewExecutor(eng, logger),
		aggregator: sqlexec.NewAggregator(eng, schemaConcurrency, logger),
		logger:     logger,
	}
}

// ExecuteSQL runs the submitted statement and returns the execution result.
func (h *Handlers) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("rejecting execute request", "error", err)
		common.WriteJSON(w, http.StatusBadRequest, sqlexec.ErrorResult{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result := h.executor.Execute(r.Context(), req.Query)
	common.WriteJSON(w, result.StatusCode(), result)
}

// Schema returns every user table with its columns and row count.
func (h *Handlers) Schema(w http.ResponseWriter, r *http.Request) {
	summary, err := h.aggregator.FullSchema(r.Context())
	if err != nil {
		h.logger.Error("failed to read schema", "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, sqlexec.ErrorResult{Message: err.Error()})
		return
	}
	common.WriteJSON(w, http.StatusOK, summary)
}
