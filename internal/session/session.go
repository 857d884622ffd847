// Package session keeps per-visitor state between page views.
package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wedding-site/internal/models"
)

// CookieName is the cookie carrying the session id.
const CookieName = "ws_session"

// CodeParam is the query parameter carrying an invite code.
const CodeParam = "code"

const sweepInterval = time.Minute

// State is everything remembered about one visitor.
type State struct {
	InviteCode               string
	RSVPQuestionAcknowledged bool
	LastReference            string
	Admin                    bool
}

type entry struct {
	state State
	seen  time.Time
}

// Manager stores sessions in memory. Sessions idle for longer than the TTL
// are dropped.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	ttl       time.Duration
	lastSweep time.Time
	secure    bool

	now func() time.Time
}

// NewManager creates a manager whose sessions expire after ttl of inactivity.
// secure marks the cookie Secure, for deployments behind HTTPS.
func NewManager(ttl time.Duration, secure bool) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
	}
}

// Session is a handle on one visitor's state.
type Session struct {
	ID string
	m  *Manager
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	if e, ok := s.m.sessions[s.ID]; ok {
		return e.state
	}
	return State{}
}

// Update applies fn to the stored state.
func (s *Session) Update(fn func(*State)) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	e, ok := s.m.sessions[s.ID]
	if !ok {
		e = &entry{}
		s.m.sessions[s.ID] = e
	}
	fn(&e.state)
	e.seen = s.m.now()
}

// Load returns the session named by the request cookie, starting a new one
// (and setting the cookie) when it is missing or expired.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(now)

	if c, err := r.Cookie(CookieName); err == nil {
		if e, ok := m.sessions[c.Value]; ok && now.Sub(e.seen) <= m.ttl {
			e.seen = now
			return &Session{ID: c.Value, m: m}
		}
	}

	id := uuid.NewString()
	m.sessions[id] = &entry{seen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return &Session{ID: id, m: m}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if now.Sub(e.seen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

type ctxKey struct{}

// Middleware attaches the visitor's session to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// ResolveCode picks the invite code for this request: the query parameter
// wins, otherwise the code remembered in the session. The result is
// normalized and empty when the visitor has not given one yet.
func ResolveCode(r *http.Request, st State) string {
	if code := models.NormalizeInviteCode(r.URL.Query().Get(CodeParam)); code != "" {
		return code
	}
	return strings.ToUpper(st.InviteCode)
}

// InviteLink is the URL a guest opens to land on the site with their code.
func InviteLink(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/?" + CodeParam + "=" + url.QueryEscape(models.NormalizeInviteCode(code))
}
