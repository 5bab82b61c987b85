// Package sqlrunner provides the endpoints that run user SQL and describe the
// practice database schema.
package sqlrunner

// ExecuteRequest is the body of POST /api/execute-sql.
type ExecuteRequest struct {
	Query string `json:"query"`
}
