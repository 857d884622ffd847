package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInviteCode(t *testing.T) {
	assert.Equal(t, "AB12CD34", NormalizeInviteCode("  ab12Cd34\t"))
	assert.Equal(t, "", NormalizeInviteCode("   "))
}

func TestGuest_CountOptions(t *testing.T) {
	g := Guest{PartySizeMin: 1, PartySizeMax: 3}
	assert.Equal(t, []int{1, 2, 3}, g.CountOptions())
	assert.False(t, g.FixedPartySize())
	assert.True(t, g.AllowsCount(2))
	assert.False(t, g.AllowsCount(0))
	assert.False(t, g.AllowsCount(4))

	fixed := Guest{PartySizeMin: 2, PartySizeMax: 2}
	assert.True(t, fixed.FixedPartySize())
	assert.Equal(t, []int{2}, fixed.CountOptions())
}

func TestParseAttending(t *testing.T) {
	tests := []struct {
		in      string
		want    Attending
		wantErr bool
	}{
		{"Yes", AttendingYes, false},
		{"yes", AttendingYes, false},
		{"Yes 🎉", AttendingYes, false},
		{"No", AttendingNo, false},
		{" no 😢", AttendingNo, false},
		{"maybe", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAttending(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRSVPRow(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rec := RSVPRecord{
		Timestamp:     ts,
		InviteCode:    "AB12CD34",
		PartyLabel:    "The Smiths",
		Attending:     AttendingYes,
		AttendeeCount: 2,
		Dietary:       "vegetarian",
		Message:       "See you, there!",
	}

	row := rec.Row()
	require.Len(t, row, len(RSVPColumns))
	assert.Equal(t, "2026-03-01T12:30:00Z", row[0])
	assert.Equal(t, "2", row[4])

	got, err := ParseRSVPRow(row)
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(ts))
	got.Timestamp = ts
	assert.Equal(t, rec, got)
}

func TestParseRSVPRow_Errors(t *testing.T) {
	_, err := ParseRSVPRow([]string{"too", "short"})
	assert.Error(t, err)

	row := RSVPRecord{Timestamp: time.Now(), Attending: AttendingNo, AttendeeCount: 1}.Row()
	row[4] = "many"
	_, err = ParseRSVPRow(row)
	assert.Error(t, err)
}

func TestParsePledgeRow_LegacyValues(t *testing.T) {
	row := []string{"2026-02-10T09:15:00", "AB12CD34", "The Smiths", "Date Night 🍷", "700", "West Coast", "", "True", "DMHM-ABC123", "False"}
	got, err := ParsePledgeRow(row)
	require.NoError(t, err)
	assert.Equal(t, 700, got.Amount)
	assert.True(t, got.WantsUpdate)
	assert.False(t, got.Paid)
	assert.Equal(t, 2026, got.Timestamp.Year())
}

func TestPledgeRow(t *testing.T) {
	rec := PledgeRecord{
		Timestamp:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		InviteCode:    "AB12CD34",
		PartyLabel:    "The Smiths",
		Token:         "Fuel",
		Amount:        500,
		Area:          "West Coast",
		WantsUpdate:   true,
		ReferenceCode: "DMHM-ZZZ999",
	}
	row := rec.Row()
	require.Len(t, row, len(PledgeColumns))
	assert.Equal(t, "true", row[7])
	assert.Equal(t, "false", row[9])

	got, err := ParsePledgeRow(row)
	require.NoError(t, err)
	assert.Equal(t, rec.ReferenceCode, got.ReferenceCode)
	assert.Equal(t, rec.Amount, got.Amount)
	assert.True(t, got.WantsUpdate)
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"": false, "true": true, "TRUE": true, "yes": true, "0": false, "no": false, "1": true} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBool("perhaps")
	assert.Error(t, err)
}
