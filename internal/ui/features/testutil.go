// Package features provides shared test utilities for HTTP feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/testutil"
	"github.com/leapstack-labs/sqlpad/internal/ui/sessionstore"
)

// TestCookieName is the session cookie name used by feature tests.
const TestCookieName = "sqlpad.test"

// TestFixture holds all dependencies needed for HTTP handler tests.
type TestFixture struct {
	DB           *engine.DB
	SessionStore *sessionstore.MemStore
	Logger       *slog.Logger
}

// SetupTestFixture creates an in-memory database prepared with stmts and a
// fresh session store.
func SetupTestFixture(t *testing.T, stmts ...string) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	db, err := engine.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	for _, stmt := range stmts {
		_, err := db.Exec(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}

	return &TestFixture{
		DB:           db,
		SessionStore: NewTestSessionStore(),
		Logger:       logger,
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessionstore.MemStore {
	return sessionstore.New(time.Hour, []byte("test-secret-key-32-bytes-long!!"))
}

// NewJSONRequest builds a request whose body is v encoded as JSON. A string
// v is sent as-is so tests can post malformed bodies.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()

	var body []byte
	switch b := v.(type) {
	case nil:
	case string:
		body = []byte(b)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithCookies copies the cookies set on rec onto req.
func WithCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// DecodeBody decodes the recorded JSON response into a generic map.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
