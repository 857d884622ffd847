package models

import "strings"

// Guest represents one invited party from the guest list
type Guest struct {
	InviteCode     string `json:"invite_code"`
	PartyLabel     string `json:"party_label"`
	PartySizeMin   int    `json:"party_size_min"`
	PartySizeMax   int    `json:"party_size_max"`
	PlusOneAllowed bool   `json:"plus_one_allowed"`
	Notes          string `json:"notes,omitempty"`
}

// FixedPartySize reports whether the party has exactly one possible size.
func (g Guest) FixedPartySize() bool {
	return g.PartySizeMin == g.PartySizeMax
}

// AllowsCount reports whether n attendees fits the party bounds.
func (g Guest) AllowsCount(n int) bool {
	return n >= g.PartySizeMin && n <= g.PartySizeMax
}

// CountOptions lists every selectable attendee count, smallest first.
func (g Guest) CountOptions() []int {
	if g.PartySizeMax < g.PartySizeMin {
		return nil
	}
	opts := make([]int, 0, g.PartySizeMax-g.PartySizeMin+1)
	for n := g.PartySizeMin; n <= g.PartySizeMax; n++ {
		opts = append(opts, n)
	}
	return opts
}

// NormalizeInviteCode trims and upper-cases an invite code.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
