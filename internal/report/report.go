// Package report computes the admin dashboard figures and export files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"wedding-site/internal/models"
)

// RSVPSummary counts replies and the expected headcount.
type RSVPSummary struct {
	Yes       int
	No        int
	Headcount int
}

// SummarizeRSVPs counts Yes and No replies. Headcount sums attendee counts
// of Yes replies only.
func SummarizeRSVPs(rsvps []models.RSVPRecord) RSVPSummary {
	var s RSVPSummary
	for _, r := range rsvps {
		switch r.Attending {
		case models.AttendingYes:
			s.Yes++
			s.Headcount += r.AttendeeCount
		case models.AttendingNo:
			s.No++
		}
	}
	return s
}

// TokenTotal is the pledged amount for one token.
type TokenTotal struct {
	Token  string
	Amount int
	Count  int
}

// TotalsByToken sums pledge amounts per token label, largest first. Equal
// totals are ordered by label.
func TotalsByToken(pledges []models.PledgeRecord) []TokenTotal {
	byToken := make(map[string]*TokenTotal)
	for _, p := range pledges {
		t, ok := byToken[p.Token]
		if !ok {
			t = &TokenTotal{Token: p.Token}
			byToken[p.Token] = t
		}
		t.Amount += p.Amount
		t.Count++
	}

	out := make([]TokenTotal, 0, len(byToken))
	for _, t := range byToken {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Token < out[j].Token
	})
	return out
}

// PledgedTotal sums every pledge amount.
func PledgedTotal(pledges []models.PledgeRecord) int {
	total := 0
	for _, p := range pledges {
		total += p.Amount
	}
	return total
}

// WriteCSV writes header followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
