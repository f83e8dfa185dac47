package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the dashboard session cookie.
const CookieName = "gk_session"

// Session is one logged-in dashboard user.
type Session struct {
	ID      string
	User    Identity
	Expires time.Time
}

// Sessions is an in-memory session registry. Sessions do not survive a
// process restart; users log in again.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions creates a registry with the given session lifetime.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a session for the user and returns its ID.
func (s *Sessions) Create(user Identity) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = Session{ID: id, User: user, Expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return id
}

// Get returns the session by ID if it exists and has not expired.
func (s *Sessions) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	if s.now().After(sess.Expires) {
		delete(s.sessions, id)
		return Session{}, false
	}
	return sess, true
}

// Delete removes the session.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

type contextKey struct{}

// FromContext returns the session attached by RequireSession.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

// RequireSession rejects requests without a valid session cookie and
// attaches the session to the request context otherwise.
func (s *Sessions) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			unauthorized(w)
			return
		}
		sess, ok := s.Get(cookie.Value)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, sess)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
