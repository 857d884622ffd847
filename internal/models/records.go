package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is how record timestamps are written to the stores.
const TimestampLayout = time.RFC3339

// legacyTimestampLayout matches rows written without a zone offset.
const legacyTimestampLayout = "2006-01-02T15:04:05"

// Attending is a guest's answer to the RSVP.
type Attending string

const (
	AttendingYes Attending = "Yes"
	AttendingNo  Attending = "No"
)

// ParseAttending accepts "Yes"/"No" in any case, including decorated values
// such as "Yes 🎉".
func ParseAttending(s string) (Attending, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "yes"):
		return AttendingYes, nil
	case strings.HasPrefix(v, "no"):
		return AttendingNo, nil
	}
	return "", fmt.Errorf("invalid attending value %q", s)
}

// RSVPColumns is the header of the RSVP table.
var RSVPColumns = []string{
	"timestamp", "invite_code", "party_label", "attending", "attendee_count",
	"dietary", "allergies", "song_request", "message",
}

// RSVPRecord is one RSVP submission.
type RSVPRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	InviteCode    string    `json:"invite_code"`
	PartyLabel    string    `json:"party_label"`
	Attending     Attending `json:"attending"`
	AttendeeCount int       `json:"attendee_count"`
	Dietary       string    `json:"dietary"`
	Allergies     string    `json:"allergies"`
	SongRequest   string    `json:"song_request"`
	Message       string    `json:"message"`
}

// Row encodes the record in RSVPColumns order.
func (r RSVPRecord) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.InviteCode,
		r.PartyLabel,
		string(r.Attending),
		strconv.Itoa(r.AttendeeCount),
		r.Dietary,
		r.Allergies,
		r.SongRequest,
		r.Message,
	}
}

// ParseRSVPRow decodes a row written by RSVPRecord.Row.
func ParseRSVPRow(row []string) (RSVPRecord, error) {
	if len(row) != len(RSVPColumns) {
		return RSVPRecord{}, fmt.Errorf("rsvp row has %d columns, want %d", len(row), len(RSVPColumns))
	}
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return RSVPRecord{}, err
	}
	attending, err := ParseAttending(row[3])
	if err != nil {
		return RSVPRecord{}, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return RSVPRecord{}, fmt.Errorf("invalid attendee_count %q: %w", row[4], err)
	}
	return RSVPRecord{
		Timestamp:     ts,
		InviteCode:    row[1],
		PartyLabel:    row[2],
		Attending:     attending,
		AttendeeCount: count,
		Dietary:       row[5],
		Allergies:     row[6],
		SongRequest:   row[7],
		Message:       row[8],
	}, nil
}

// PledgeColumns is the header of the pledge table.
var PledgeColumns = []string{
	"timestamp", "invite_code", "party_label", "token", "amount", "area",
	"suggestion", "wants_update", "reference_code", "paid",
}

// PledgeRecord is one honeymoon pledge. Paid is only ever set outside the app.
type PledgeRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	InviteCode    string    `json:"invite_code"`
	PartyLabel    string    `json:"party_label"`
	Token         string    `json:"token"`
	Amount        int       `json:"amount"`
	Area          string    `json:"area"`
	Suggestion    string    `json:"suggestion"`
	WantsUpdate   bool      `json:"wants_update"`
	ReferenceCode string    `json:"reference_code"`
	Paid          bool      `json:"paid"`
}

// Row encodes the record in PledgeColumns order.
func (p PledgeRecord) Row() []string {
	return []string{
		p.Timestamp.Format(TimestampLayout),
		p.InviteCode,
		p.PartyLabel,
		p.Token,
		strconv.Itoa(p.Amount),
		p.Area,
		p.Suggestion,
		strconv.FormatBool(p.WantsUpdate),
		p.ReferenceCode,
		strconv.FormatBool(p.Paid),
	}
}

// ParsePledgeRow decodes a row written by PledgeRecord.Row.
func ParsePledgeRow(row []string) (PledgeRecord, error) {
	if len(row) != len(PledgeColumns) {
		return PledgeRecord{}, fmt.Errorf("pledge row has %d columns, want %d", len(row), len(PledgeColumns))
	}
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return PledgeRecord{}, err
	}
	amount, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return PledgeRecord{}, fmt.Errorf("invalid amount %q: %w", row[4], err)
	}
	wantsUpdate, err := ParseBool(row[7])
	if err != nil {
		return PledgeRecord{}, err
	}
	paid, err := ParseBool(row[9])
	if err != nil {
		return PledgeRecord{}, err
	}
	return PledgeRecord{
		Timestamp:     ts,
		InviteCode:    row[1],
		PartyLabel:    row[2],
		Token:         row[3],
		Amount:        amount,
		Area:          row[5],
		Suggestion:    row[6],
		WantsUpdate:   wantsUpdate,
		ReferenceCode: row[8],
		Paid:          paid,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseBool accepts the strconv forms plus yes/no. Empty means false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q: %w", s, err)
	}
	return b, nil
}
