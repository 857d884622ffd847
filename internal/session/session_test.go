package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(ttl time.Duration) (*Manager, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(ttl, false)
	m.now = c.now
	return m, c
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestManager_IssuesAndReusesSession(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	rec := httptest.NewRecorder()
	first := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rec)
	assert.Equal(t, first.ID, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	first.Update(func(st *State) { st.InviteCode = "ABC123" })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	second := m.Load(rec, req)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, "ABC123", second.State().InviteCode)
}

func TestManager_ExpiredSessionIsReplaced(t *testing.T) {
	m, clk := newTestManager(time.Hour)

	rec := httptest.NewRecorder()
	s := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Update(func(st *State) { st.Admin = true })
	c := sessionCookie(t, rec)

	clk.t = clk.t.Add(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	fresh := m.Load(rec, req)
	assert.NotEqual(t, s.ID, fresh.ID)
	assert.False(t, fresh.State().Admin)
	assert.Equal(t, 1, m.Len(), "expired session should be swept")
}

func TestManager_UnknownCookieStartsNewSession(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	s := m.Load(rec, req)
	assert.NotEqual(t, "forged", s.ID)
	assert.Equal(t, s.ID, sessionCookie(t, rec).Value)
}

func TestMiddleware_AttachesSession(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	var got *Session
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.Equal(t, 1, m.Len())
}

func TestResolveCode(t *testing.T) {
	tests := []struct {
		name   string
		target string
		stored string
		want   string
	}{
		{"query only", "/rsvp?code=abc123", "", "ABC123"},
		{"session only", "/rsvp", "SOLO1", "SOLO1"},
		{"query wins", "/rsvp?code=new1", "OLD1", "NEW1"},
		{"blank query falls back", "/rsvp?code=++", "OLD1", "OLD1"},
		{"neither", "/rsvp", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.want, ResolveCode(r, State{InviteCode: tt.stored}))
		})
	}
}

func TestInviteLink(t *testing.T) {
	assert.Equal(t, "https://wedding.example/?code=ABC123", InviteLink("https://wedding.example/", " abc123"))
	assert.Equal(t, "http://localhost:8080/?code=A%26B", InviteLink("http://localhost:8080", "a&b"))
}
