package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"wedding-site/internal/models"
	"wedding-site/internal/session"
)

type rsvpForm struct {
	Attending   string
	Count       int
	Dietary     string
	Allergies   string
	SongRequest string
	Message     string
}

type rsvpView struct {
	Open         bool
	Deadline     string
	Acknowledged bool
	Fixed        bool
	Seats        int
	Options      []int
	Form         rsvpForm
	Submitted    bool
}

func (s *Server) newRSVPView(guest models.Guest, st session.State) rsvpView {
	return rsvpView{
		Open:         s.event.RSVPOpen(s.now()),
		Deadline:     s.event.RSVPDeadline.Format("02 January 2006"),
		Acknowledged: st.RSVPQuestionAcknowledged,
		Fixed:        guest.FixedPartySize(),
		Seats:        guest.PartySizeMax,
		Options:      guest.CountOptions(),
		Form: rsvpForm{
			Attending: string(models.AttendingYes),
			Count:     guest.PartySizeMin,
		},
	}
}

func (s *Server) handleRSVPPage(w http.ResponseWriter, r *http.Request) {
	guest, sess, ok := s.requireGuest(w, r)
	if !ok {
		return
	}
	v := s.newRSVPView(guest, sess.State())
	s.render(w, r, http.StatusOK, "rsvp", s.guestPage(guest, "rsvp", "RSVP", v))
}

// handleRSVPAck records that the playful question was answered. Nothing is
// persisted.
func (s *Server) handleRSVPAck(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.requireGuest(w, r)
	if !ok {
		return
	}
	sess.Update(func(st *session.State) { st.RSVPQuestionAcknowledged = true })

	target := "/rsvp"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleRSVPSubmit(w http.ResponseWriter, r *http.Request) {
	guest, sess, ok := s.requireGuest(w, r)
	if !ok {
		return
	}
	v := s.newRSVPView(guest, sess.State())
	if !v.Open {
		s.render(w, r, http.StatusForbidden, "rsvp", s.guestPage(guest, "rsvp", "RSVP", v))
		return
	}

	rec, form, msg := s.parseRSVP(r, guest)
	v.Form = form
	if msg != "" {
		p := s.guestPage(guest, "rsvp", "RSVP", v)
		p.Error = msg
		s.render(w, r, http.StatusBadRequest, "rsvp", p)
		return
	}

	log := hlog.FromRequest(r)
	if err := s.records.AppendRSVP(r.Context(), rec); err != nil {
		log.Error().Err(err).Str("code", guest.InviteCode).Msg("Failed to store RSVP")
		p := s.guestPage(guest, "rsvp", "RSVP", v)
		p.Error = "We couldn't save your RSVP. Please try again."
		s.render(w, r, http.StatusInternalServerError, "rsvp", p)
		return
	}
	log.Info().
		Str("code", guest.InviteCode).
		Str("attending", string(rec.Attending)).
		Int("count", rec.AttendeeCount).
		Msg("RSVP stored")

	s.notify(r, "rsvp", func(ctx context.Context, n Notifier) error {
		return n.RSVPReceived(ctx, rec)
	})

	v.Submitted = true
	s.render(w, r, http.StatusOK, "rsvp", s.guestPage(guest, "rsvp", "RSVP", v))
}

// parseRSVP builds a record from the submitted form. A non-empty message
// means the input was rejected; the form is returned for re-rendering.
func (s *Server) parseRSVP(r *http.Request, guest models.Guest) (models.RSVPRecord, rsvpForm, string) {
	form := rsvpForm{
		Attending:   r.PostFormValue("attending"),
		Count:       guest.PartySizeMin,
		Dietary:     cleanText(r.PostFormValue("dietary")),
		Allergies:   cleanText(r.PostFormValue("allergies")),
		SongRequest: cleanText(r.PostFormValue("song_request")),
		Message:     cleanText(r.PostFormValue("message")),
	}

	attending, err := models.ParseAttending(form.Attending)
	if err != nil {
		return models.RSVPRecord{}, form, "Please choose Yes or No."
	}
	form.Attending = string(attending)

	count := guest.PartySizeMax
	if !guest.FixedPartySize() {
		n, err := strconv.Atoi(r.PostFormValue("attendee_count"))
		if err != nil || !guest.AllowsCount(n) {
			return models.RSVPRecord{}, form, "Please pick how many of you will attend."
		}
		count = n
	}
	form.Count = count

	return models.RSVPRecord{
		Timestamp:     s.now(),
		InviteCode:    guest.InviteCode,
		PartyLabel:    guest.PartyLabel,
		Attending:     attending,
		AttendeeCount: count,
		Dietary:       form.Dietary,
		Allergies:     form.Allergies,
		SongRequest:   form.SongRequest,
		Message:       form.Message,
	}, form, ""
}
