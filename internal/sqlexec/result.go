package sqlexec

import (
	"encoding/json"
	"net/http"

	"github.com/leapstack-labs/sqlpad/internal/engine"
)

// ResultType is the discriminator written as "type" in every JSON result.
type ResultType string

const (
	TypeQuery     ResultType = "query"
	TypeDualQuery ResultType = "dual_query"
	TypeError     ResultType = "error"
)

// Result is the outcome of Execute. It is one of QueryResult,
// DualQueryResult or ErrorResult.
type Result interface {
	Type() ResultType
	// StatusCode is the HTTP status the result maps to.
	StatusCode() int
	isResult()
}

// QueryResult is the outcome of a read.
type QueryResult struct {
	Message string
	Data    []engine.Row
}

// DualQueryResult is the outcome of a mutating statement: the target table
// before and after it ran.
type DualQueryResult struct {
	Message      string
	PreviousData TableSnapshot
	UpdatedData  TableSnapshot
	AffectedRows int64
}

// ErrorResult is a failed execution.
type ErrorResult struct {
	Message string
	Status  int
}

func (QueryResult) Type() ResultType     { return TypeQuery }
func (DualQueryResult) Type() ResultType { return TypeDualQuery }
func (ErrorResult) Type() ResultType     { return TypeError }

func (QueryResult) StatusCode() int     { return http.StatusOK }
func (DualQueryResult) StatusCode() int { return http.StatusOK }

func (r ErrorResult) StatusCode() int {
	if r.Status == 0 {
		return http.StatusInternalServerError
	}
	return r.Status
}

func (QueryResult) isResult()     {}
func (DualQueryResult) isResult() {}
func (ErrorResult) isResult()     {}

// MarshalJSON implements json.Marshaler.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	data := r.Data
	if data == nil {
		data = []engine.Row{}
	}
	return json.Marshal(struct {
		Type    ResultType   `json:"type"`
		Message string       `json:"message"`
		Data    []engine.Row `json:"data"`
	}{TypeQuery, r.Message, data})
}

// MarshalJSON implements json.Marshaler.
func (r DualQueryResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type         ResultType    `json:"type"`
		Message      string        `json:"message"`
		PreviousData TableSnapshot `json:"previousData"`
		UpdatedData  TableSnapshot `json:"updatedData"`
		AffectedRows int64         `json:"affectedRows"`
	}{TypeDualQuery, r.Message, r.PreviousData, r.UpdatedData, r.AffectedRows})
}

// MarshalJSON implements json.Marshaler.
func (r ErrorResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ResultType `json:"type"`
		Message string     `json:"message"`
	}{TypeError, r.Message})
}
