package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/models"
)

func TestSummarizeRSVPs(t *testing.T) {
	rsvps := []models.RSVPRecord{
		{Attending: models.AttendingYes, AttendeeCount: 2},
		{Attending: models.AttendingNo, AttendeeCount: 1},
		{Attending: models.AttendingYes, AttendeeCount: 3},
	}
	assert.Equal(t, RSVPSummary{Yes: 2, No: 1, Headcount: 5}, SummarizeRSVPs(rsvps))
	assert.Equal(t, RSVPSummary{}, SummarizeRSVPs(nil))
}

func TestTotalsByToken(t *testing.T) {
	pledges := []models.PledgeRecord{
		{Token: "A", Amount: 500},
		{Token: "B", Amount: 300},
		{Token: "A", Amount: 200},
	}
	assert.Equal(t, []TokenTotal{
		{Token: "A", Amount: 700, Count: 2},
		{Token: "B", Amount: 300, Count: 1},
	}, TotalsByToken(pledges))
	assert.Equal(t, 1000, PledgedTotal(pledges))
}

func TestTotalsByToken_TiesOrderedByLabel(t *testing.T) {
	pledges := []models.PledgeRecord{
		{Token: "Nest", Amount: 100},
		{Token: "Fuel", Amount: 100},
		{Token: "Detour", Amount: 0},
	}
	got := TotalsByToken(pledges)
	require.Len(t, got, 3)
	assert.Equal(t, "Fuel", got[0].Token)
	assert.Equal(t, "Nest", got[1].Token)
	assert.Equal(t, "Detour", got[2].Token)
	assert.Empty(t, TotalsByToken(nil))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"a", "b"}, [][]string{{"1", "x, y"}, {"2", ""}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x, y\"\n2,\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, []string{"a"}, nil))
	assert.Equal(t, "a\n", buf.String())
}
