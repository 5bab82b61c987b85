package sessionstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "test.sid"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*MemStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := New(time.Hour, []byte("test-secret-key-32-bytes-long!!"))
	s.now = clock.Now
	return s, clock
}

// saveSession stores values in a new session and returns the cookie issued.
func saveSession(t *testing.T, s *MemStore, values map[any]any) *http.Cookie {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	session, err := s.New(r, cookieName)
	require.NoError(t, err)
	for k, v := range values {
		session.Values[k] = v
	}
	require.NoError(t, s.Save(r, w, session))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestMemStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	cookie := saveSession(t, s, map[any]any{"name": "ana"})

	assert.Equal(t, cookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	session, err := s.New(requestWith(cookie), cookieName)
	require.NoError(t, err)
	assert.False(t, session.IsNew)
	assert.Equal(t, "ana", session.Values["name"])
	assert.Equal(t, 1, s.Len())
}

func TestMemStore_NoCookie(t *testing.T) {
	s, _ := newTestStore(t)

	session, err := s.New(requestWith(nil), cookieName)
	require.NoError(t, err)
	assert.True(t, session.IsNew)
	assert.Empty(t, session.ID)
	assert.Empty(t, session.Values)
}

func TestMemStore_TamperedCookie(t *testing.T) {
	s, _ := newTestStore(t)
	cookie := saveSession(t, s, map[any]any{"name": "ana"})
	cookie.Value = "x" + cookie.Value

	session, err := s.New(requestWith(cookie), cookieName)
	require.Error(t, err)
	assert.True(t, session.IsNew)
	assert.Empty(t, session.Values)
}

func TestMemStore_UnsavedChangesDoNotLeak(t *testing.T) {
	s, _ := newTestStore(t)
	cookie := saveSession(t, s, map[any]any{"name": "ana"})

	session, err := s.New(requestWith(cookie), cookieName)
	require.NoError(t, err)
	session.Values["name"] = "changed"

	again, err := s.New(requestWith(cookie), cookieName)
	require.NoError(t, err)
	assert.Equal(t, "ana", again.Values["name"])
}

func TestMemStore_SlidingExpiry(t *testing.T) {
	s, clock := newTestStore(t)
	cookie := saveSession(t, s, map[any]any{"name": "ana"})

	// Each load within the window pushes the expiry forward.
	for range 3 {
		clock.Advance(40 * time.Minute)
		session, err := s.New(requestWith(cookie), cookieName)
		require.NoError(t, err)
		require.False(t, session.IsNew)
	}

	clock.Advance(61 * time.Minute)
	session, err := s.New(requestWith(cookie), cookieName)
	require.NoError(t, err)
	assert.True(t, session.IsNew)
	assert.Empty(t, session.Values)
	assert.Zero(t, s.Len())
}

func TestMemStore_Load(t *testing.T) {
	s, clock := newTestStore(t)

	_, err := s.load("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s.store("id", map[any]any{"k": 1})
	clock.Advance(2 * time.Hour)
	_, err = s.load("id")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestMemStore_Destroy(t *testing.T) {
	s, _ := newTestStore(t)
	cookie := saveSession(t, s, map[any]any{"name": "ana"})

	r := requestWith(cookie)
	session, err := s.New(r, cookieName)
	require.NoError(t, err)

	session.Options.MaxAge = -1
	w := httptest.NewRecorder()
	require.NoError(t, s.Save(r, w, session))

	assert.Zero(t, s.Len())
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, cookieName, cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)

	after, err := s.New(requestWith(cookie), cookieName)
	require.NoError(t, err)
	assert.True(t, after.IsNew)
}

func TestMemStore_DeleteExpired(t *testing.T) {
	s, clock := newTestStore(t)
	saveSession(t, s, map[any]any{"n": 1})
	clock.Advance(30 * time.Minute)
	saveSession(t, s, map[any]any{"n": 2})

	clock.Advance(45 * time.Minute)
	assert.Equal(t, 1, s.DeleteExpired())
	assert.Equal(t, 1, s.Len())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, s.DeleteExpired())
	assert.Zero(t, s.Len())
}

func TestMemStore_CleanupStopsWithContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Cleanup(ctx, time.Millisecond, nil) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Cleanup did not return after cancel")
	}
}
