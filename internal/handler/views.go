package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"wedding-site/internal/config"
	"wedding-site/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"prompt", "invalid", "setup", "failure", "rsvp", "details", "honeymoon", "admin"}

// page is the data handed to the layout template.
type page struct {
	Title     string
	Nav       string
	Guest     *models.Guest
	CodeQuery string
	Error     string
	Data      any

	Event   *config.Event
	ShowNav bool
}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{
		"shortDate": func(d config.Date) string { return d.Format("02 January 2006") },
		"longDate":  func(d config.Date) string { return d.Format("Monday, 02 January 2006") },
		"timestamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.views.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	p.Event = s.event
	p.ShowNav = p.Guest != nil || p.Nav == "admin"

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("page", name).Msg("Template failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
}
