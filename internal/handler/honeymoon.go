package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"wedding-site/internal/config"
	"wedding-site/internal/models"
	"wedding-site/internal/refcode"
	"wedding-site/internal/session"
)

// maxReferenceAttempts bounds retries when a generated reference collides
// with a stored one.
const maxReferenceAttempts = 5

var errReferenceExhausted = errors.New("no unused reference code found")

type honeymoonView struct {
	Token         config.Token
	OpenEnded     bool
	Amount        int
	Area          string
	Suggestion    string
	WantsUpdate   bool
	Reference     string
	LastReference string
}

func (s *Server) newHoneymoonView(tokenKey string, st session.State) honeymoonView {
	token, ok := s.event.TokenByKey(tokenKey)
	if !ok {
		token = s.event.Tokens[0]
	}
	return honeymoonView{
		Token:         token,
		OpenEnded:     token.Key == config.DetourTokenKey,
		Amount:        token.StartAmount(),
		Area:          s.event.RouteAreas[0],
		WantsUpdate:   true,
		LastReference: st.LastReference,
	}
}

func (s *Server) handleHoneymoonPage(w http.ResponseWriter, r *http.Request) {
	guest, sess, ok := s.requireGuest(w, r)
	if !ok {
		return
	}
	v := s.newHoneymoonView(r.URL.Query().Get("token"), sess.State())
	s.render(w, r, http.StatusOK, "honeymoon", s.guestPage(guest, "honeymoon", "Honeymoon", v))
}

func (s *Server) handleHoneymoonSubmit(w http.ResponseWriter, r *http.Request) {
	guest, sess, ok := s.requireGuest(w, r)
	if !ok {
		return
	}

	v := s.newHoneymoonView(r.PostFormValue("token"), sess.State())
	rec, msg := s.parsePledge(r, guest, &v)
	if msg != "" {
		p := s.guestPage(guest, "honeymoon", "Honeymoon", v)
		p.Error = msg
		s.render(w, r, http.StatusBadRequest, "honeymoon", p)
		return
	}

	log := hlog.FromRequest(r)
	ref, err := s.newReference(r.Context())
	if err == nil {
		rec.ReferenceCode = ref
		err = s.records.AppendPledge(r.Context(), rec)
	}
	if err != nil {
		log.Error().Err(err).Str("code", guest.InviteCode).Msg("Failed to store pledge")
		p := s.guestPage(guest, "honeymoon", "Honeymoon", v)
		p.Error = "We couldn't save your pledge. Please try again."
		s.render(w, r, http.StatusInternalServerError, "honeymoon", p)
		return
	}
	log.Info().
		Str("code", guest.InviteCode).
		Str("token", rec.Token).
		Int("amount", rec.Amount).
		Str("reference", rec.ReferenceCode).
		Msg("Pledge stored")

	sess.Update(func(st *session.State) { st.LastReference = rec.ReferenceCode })
	s.notify(r, "pledge", func(ctx context.Context, n Notifier) error {
		return n.PledgeReceived(ctx, rec)
	})

	v.Reference = rec.ReferenceCode
	s.render(w, r, http.StatusOK, "honeymoon", s.guestPage(guest, "honeymoon", "Honeymoon", v))
}

// parsePledge validates the pledge form into a record without a reference
// code. v is updated with the submitted values.
func (s *Server) parsePledge(r *http.Request, guest models.Guest, v *honeymoonView) (models.PledgeRecord, string) {
	v.Suggestion = cleanText(r.PostFormValue("suggestion"))
	v.WantsUpdate = r.PostFormValue("wants_update") != ""
	if area := r.PostFormValue("area"); area != "" {
		v.Area = area
	}

	token, ok := s.event.TokenByKey(r.PostFormValue("token"))
	if !ok {
		return models.PledgeRecord{}, "Please pick a token."
	}

	amount, err := strconv.Atoi(r.PostFormValue("amount"))
	if err != nil {
		return models.PledgeRecord{}, "Please enter an amount."
	}
	v.Amount = amount
	if !token.Allows(amount) {
		return models.PledgeRecord{}, fmt.Sprintf("Please choose an amount between R%d and R%d.", token.MinAmount, token.MaxAmount)
	}
	if !s.event.HasArea(v.Area) {
		return models.PledgeRecord{}, "Please pick an area from the list."
	}

	return models.PledgeRecord{
		Timestamp:   s.now(),
		InviteCode:  guest.InviteCode,
		PartyLabel:  guest.PartyLabel,
		Token:       token.Label,
		Amount:      amount,
		Area:        v.Area,
		Suggestion:  v.Suggestion,
		WantsUpdate: v.WantsUpdate,
		Paid:        false,
	}, ""
}

// newReference generates a reference code not yet used by a stored pledge.
func (s *Server) newReference(ctx context.Context) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref, err := refcode.Generate(s.event.ReferencePrefix)
		if err != nil {
			return "", err
		}
		exists, err := s.records.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errReferenceExhausted
}
