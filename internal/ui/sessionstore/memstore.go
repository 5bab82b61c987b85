// Package sessionstore keeps login sessions in process memory behind the
// gorilla/sessions Store interface.
//
// The browser only holds a signed session id. Values live on the server and
// expire after a period of inactivity: every successful load pushes the expiry
// forward by the store's max age.
package sessionstore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

type entry struct {
	values  map[any]any
	expires time.Time
}

// MemStore is an in-memory sessions.Store with a sliding expiry.
type MemStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options // default options for new sessions

	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// New creates a MemStore whose sessions expire after maxAge of inactivity.
// keyPairs are passed to securecookie.CodecsFromPairs.
func New(maxAge time.Duration, keyPairs ...[]byte) *MemStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		// Expiry is tracked server side, so the cookie timestamp is not checked.
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(0)
		}
	}

	return &MemStore{
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(maxAge / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		maxAge:  maxAge,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns a session for the given name after adding it to the registry.
func (s *MemStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session referenced by the request cookie, or a fresh one
// when there is no cookie or the referenced session is gone. Like the gorilla
// stores, a cookie that fails to decode yields a fresh session and the error.
func (s *MemStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.Codecs...); err != nil {
		return session, err
	}

	values, err := s.load(id)
	if err != nil {
		return session, nil
	}

	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save stores the session values and writes the session cookie. A negative
// MaxAge deletes the session and expires the cookie.
func (s *MemStore) Save(_ *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	opts := session.Options
	if opts == nil {
		opts = s.Options
	}

	if opts.MaxAge < 0 {
		if session.ID != "" {
			s.delete(session.ID)
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", opts))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	s.store(session.ID, session.Values)

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, opts))
	return nil
}

// Len returns the number of live and not yet swept sessions.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// DeleteExpired removes every expired session and returns how many went.
func (s *MemStore) DeleteExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Cleanup sweeps expired sessions every interval until ctx is done.
func (s *MemStore) Cleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.DeleteExpired(); n > 0 {
				logger.Debug("swept expired sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

// load returns a copy of the values for id and slides its expiry.
func (s *MemStore) load(id string) (map[any]any, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if now.After(e.expires) {
		delete(s.entries, id)
		return nil, ErrSessionExpired
	}

	e.expires = now.Add(s.maxAge)
	s.entries[id] = e
	return copyValues(e.values), nil
}

func (s *MemStore) store(id string, values map[any]any) {
	expires := s.now().Add(s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{values: copyValues(values), expires: expires}
}

func (s *MemStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func copyValues(src map[any]any) map[any]any {
	dst := make(map[any]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
