package handler

import "net/http"

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	guest, _, ok := s.requireGuest(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "details", s.guestPage(guest, "details", "Wedding Details", nil))
}
