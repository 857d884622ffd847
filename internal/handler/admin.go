package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"github.com/skip2/go-qrcode"

	"wedding-site/internal/guests"
	"wedding-site/internal/models"
	"wedding-site/internal/report"
	"wedding-site/internal/session"
	"wedding-site/internal/storage"
)

const qrSize = 320

type inviteRow struct {
	Guest   models.Guest
	Replied bool
	Link    string
}

type adminView struct {
	Authorized bool

	RSVPColumns   []string
	RSVPs         []models.RSVPRecord
	Summary       report.RSVPSummary
	PledgeColumns []string
	Pledges       []models.PledgeRecord
	Totals        []report.TokenTotal
	PledgedTotal  int

	Invites      []inviteRow
	InvitesError string
}

func adminPage(v adminView) page {
	return page{Title: "Admin", Nav: "admin", Data: v}
}

// adminConfigured writes the setup page and returns false when no admin
// password is configured.
func (s *Server) adminConfigured(w http.ResponseWriter, r *http.Request) bool {
	if s.adminPassword != "" {
		return true
	}
	hlog.FromRequest(r).Error().Msg("ADMIN_PASSWORD is not set")
	s.render(w, r, http.StatusInternalServerError, "setup", page{Title: "Setup issue", Data: "ADMIN_PASSWORD is not set."})
	return false
}

func (s *Server) isAdmin(r *http.Request) bool {
	sess := session.FromContext(r.Context())
	return sess != nil && sess.State().Admin
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	if !s.adminConfigured(w, r) {
		return
	}
	if !s.isAdmin(r) {
		s.render(w, r, http.StatusOK, "admin", adminPage(adminView{}))
		return
	}
	s.renderDashboard(w, r)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !s.adminConfigured(w, r) {
		return
	}

	password := r.PostFormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		hlog.FromRequest(r).Warn().Msg("Admin login failed")
		p := adminPage(adminView{})
		if password != "" {
			p.Error = "Incorrect password."
		}
		s.render(w, r, http.StatusUnauthorized, "admin", p)
		return
	}

	session.FromContext(r.Context()).Update(func(st *session.State) { st.Admin = true })
	hlog.FromRequest(r).Info().Msg("Admin signed in")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	session.FromContext(r.Context()).Update(func(st *session.State) { st.Admin = false })
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := hlog.FromRequest(r)

	rsvps, err := s.records.RSVPs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read RSVPs")
		s.render(w, r, http.StatusInternalServerError, "failure", adminPage(adminView{}))
		return
	}
	pledges, err := s.records.Pledges(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read pledges")
		s.render(w, r, http.StatusInternalServerError, "failure", adminPage(adminView{}))
		return
	}

	v := adminView{
		Authorized:    true,
		RSVPColumns:   models.RSVPColumns,
		RSVPs:         rsvps,
		Summary:       report.SummarizeRSVPs(rsvps),
		PledgeColumns: models.PledgeColumns,
		Pledges:       pledges,
		Totals:        report.TotalsByToken(pledges),
		PledgedTotal:  report.PledgedTotal(pledges),
	}

	all, err := s.guests.All(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read guest list")
		v.InvitesError = "The guest list could not be loaded."
	} else {
		replied := make(map[string]bool, len(rsvps))
		for _, rec := range rsvps {
			replied[rec.InviteCode] = true
		}
		for _, g := range all {
			v.Invites = append(v.Invites, inviteRow{Guest: g, Replied: replied[g.InviteCode], Link: s.inviteLink(g.InviteCode)})
		}
	}

	s.render(w, r, http.StatusOK, "admin", adminPage(v))
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	table := storage.Table(mux.Vars(r)["table"])
	if !table.Valid() {
		http.NotFound(w, r)
		return
	}

	rows, err := s.records.Store().ReadAll(r.Context(), table)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("table", string(table)).Msg("Export failed")
		http.Error(w, "Failed to read records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(table)+".csv"))
	if err := report.WriteCSV(w, table.Columns(), rows); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("table", string(table)).Msg("Export write failed")
	}
}

func (s *Server) handleInviteQR(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	guest, err := s.guests.Lookup(r.Context(), mux.Vars(r)["code"])
	if errors.Is(err, guests.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Guest lookup failed")
		http.Error(w, "Guest list unavailable", http.StatusInternalServerError)
		return
	}

	png, err := qrcode.Encode(s.inviteLink(guest.InviteCode), qrcode.Medium, qrSize)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("QR encode failed")
		http.Error(w, "Failed to build QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png) //nolint:errcheck
}
