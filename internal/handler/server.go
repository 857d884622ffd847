package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"wedding-site/internal/config"
	"wedding-site/internal/guests"
	"wedding-site/internal/models"
	"wedding-site/internal/session"
	"wedding-site/internal/storage"
)

// maxTextLen caps free-text answers.
const maxTextLen = 2000

const notifyTimeout = 30 * time.Second

// GuestDirectory resolves invite codes to guests.
type GuestDirectory interface {
	Lookup(ctx context.Context, code string) (models.Guest, error)
	All(ctx context.Context) ([]models.Guest, error)
}

// Notifier is told about every stored RSVP and pledge.
type Notifier interface {
	RSVPReceived(ctx context.Context, rec models.RSVPRecord) error
	PledgeReceived(ctx context.Context, rec models.PledgeRecord) error
}

// Options wires a Server.
type Options struct {
	Event         *config.Event
	Guests        GuestDirectory
	Records       *storage.Records
	Sessions      *session.Manager
	Notifier      Notifier
	AdminPassword string
	PublicURL     string
	CORSOrigins   []string
	Log           zerolog.Logger
	Now           func() time.Time
}

// Server renders the guest pages and the admin dashboard.
type Server struct {
	event         *config.Event
	guests        GuestDirectory
	records       *storage.Records
	sessions      *session.Manager
	notifier      Notifier
	adminPassword string
	publicURL     string
	corsOrigins   []string
	log           zerolog.Logger
	now           func() time.Time
	views         *views
}

// NewServer creates a server from opts.
func NewServer(opts Options) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		event:         opts.Event,
		guests:        opts.Guests,
		records:       opts.Records,
		sessions:      opts.Sessions,
		notifier:      opts.Notifier,
		adminPassword: opts.AdminPassword,
		publicURL:     strings.TrimRight(opts.PublicURL, "/"),
		corsOrigins:   opts.CORSOrigins,
		log:           opts.Log.With().Str("component", "http").Logger(),
		now:           now,
		views:         v,
	}, nil
}

// Routes returns the full handler chain: access logging, sessions, CORS and
// the page router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	r.HandleFunc("/rsvp", s.handleRSVPPage).Methods(http.MethodGet)
	r.HandleFunc("/rsvp", s.handleRSVPSubmit).Methods(http.MethodPost)
	r.HandleFunc("/rsvp/ack", s.handleRSVPAck).Methods(http.MethodPost)
	r.HandleFunc("/details", s.handleDetails).Methods(http.MethodGet)
	r.HandleFunc("/honeymoon", s.handleHoneymoonPage).Methods(http.MethodGet)
	r.HandleFunc("/honeymoon", s.handleHoneymoonSubmit).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("", s.handleAdminPage).Methods(http.MethodGet)
	admin.HandleFunc("", s.handleAdminLogin).Methods(http.MethodPost)
	admin.HandleFunc("/logout", s.handleAdminLogout).Methods(http.MethodPost)
	admin.HandleFunc("/export/{table}.csv", s.handleAdminExport).Methods(http.MethodGet)
	admin.HandleFunc("/invites/{code}/qr.png", s.handleInviteQR).Methods(http.MethodGet)

	var h http.Handler = s.sessions.Middleware(r)
	if len(s.corsOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowCredentials: true,
		}).Handler(h)
	}

	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(s.log)(h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"}) //nolint:errcheck
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	target := "/rsvp"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// requireGuest resolves the visitor's guest. When it returns false a
// complete response has already been written and the caller must stop.
func (s *Server) requireGuest(w http.ResponseWriter, r *http.Request) (models.Guest, *session.Session, bool) {
	sess := session.FromContext(r.Context())
	code := session.ResolveCode(r, sess.State())
	if code == "" {
		s.render(w, r, http.StatusOK, "prompt", page{Title: "Welcome", Data: r.URL.Path})
		return models.Guest{}, nil, false
	}

	guest, err := s.guests.Lookup(r.Context(), code)
	switch {
	case err == nil:
	case errors.Is(err, guests.ErrNotFound):
		sess.Update(func(st *session.State) {
			if st.InviteCode == code {
				st.InviteCode = ""
			}
		})
		hlog.FromRequest(r).Info().Str("code", code).Msg("Unknown invite code")
		s.render(w, r, http.StatusNotFound, "invalid", page{Title: "Invite code", Data: r.URL.Path})
		return models.Guest{}, nil, false
	case errors.Is(err, guests.ErrUnavailable):
		hlog.FromRequest(r).Error().Err(err).Msg("Guest list unavailable")
		s.render(w, r, http.StatusInternalServerError, "setup", page{Title: "Setup issue", Data: "the guest list could not be loaded."})
		return models.Guest{}, nil, false
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Guest lookup failed")
		s.render(w, r, http.StatusInternalServerError, "failure", page{Title: "Error"})
		return models.Guest{}, nil, false
	}

	sess.Update(func(st *session.State) { st.InviteCode = guest.InviteCode })
	return guest, sess, true
}

// guestPage fills the shared shell fields for a resolved guest.
func (s *Server) guestPage(guest models.Guest, nav, title string, data any) page {
	return page{
		Title:     title,
		Nav:       nav,
		Guest:     &guest,
		CodeQuery: "?" + session.CodeParam + "=" + url.QueryEscape(guest.InviteCode),
		Data:      data,
	}
}

func (s *Server) inviteLink(code string) string {
	return session.InviteLink(s.publicURL, code)
}

// notify runs fn in the background so a slow messaging service never
// delays the guest's page.
func (s *Server) notify(r *http.Request, what string, fn func(ctx context.Context, n Notifier) error) {
	if s.notifier == nil {
		return
	}
	log := *hlog.FromRequest(r)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := fn(ctx, s.notifier); err != nil {
			log.Warn().Err(err).Str("kind", what).Msg("Notification failed")
		}
	}()
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxTextLen {
		s = strings.ToValidUTF8(s[:maxTextLen], "")
	}
	return s
}
