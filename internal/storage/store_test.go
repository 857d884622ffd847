package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/models"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	stores := make(map[string]Store)
	for _, backend := range []string{BackendCSV, BackendSQLite} {
		s, err := Open(backend, t.TempDir())
		require.NoError(t, err, backend)
		t.Cleanup(func() { s.Close() })
		stores[backend] = s
	}
	return stores
}

func pledgeRow(ref string) []string {
	return models.PledgeRecord{
		Timestamp:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		InviteCode:    "ABC123",
		PartyLabel:    "Smith Family",
		Token:         "Fuel",
		Amount:        500,
		Area:          "West Coast",
		ReferenceCode: ref,
	}.Row()
}

func TestStore_EmptyTable(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, table := range Tables {
				rows, err := s.ReadAll(context.Background(), table)
				require.NoError(t, err)
				assert.NotNil(t, rows)
				assert.Empty(t, rows)
			}
		})
	}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, s.Append(ctx, TablePledges, pledgeRow(fmt.Sprintf("DMHM-%06d", i))))
			}
			rows, err := s.ReadAll(ctx, TablePledges)
			require.NoError(t, err)
			require.Len(t, rows, 5)
			for i, row := range rows {
				assert.Equal(t, fmt.Sprintf("DMHM-%06d", i), row[8])
			}

			// the other table is untouched
			rsvps, err := s.ReadAll(ctx, TableRSVP)
			require.NoError(t, err)
			assert.Empty(t, rsvps)
		})
	}
}

func TestStore_PreservesAwkwardText(t *testing.T) {
	ctx := context.Background()
	text := "line one\nline \"two\", with comma ✨"
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			row := pledgeRow("DMHM-AAAAAA")
			row[6] = text
			require.NoError(t, s.Append(ctx, TablePledges, row))

			rows, err := s.ReadAll(ctx, TablePledges)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, text, rows[0][6])
		})
	}
}

func TestStore_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Append(ctx, Table("gifts"), []string{"x"}))
			assert.Error(t, s.Append(ctx, TablePledges, []string{"too", "short"}))
			_, err := s.ReadAll(ctx, Table("gifts"))
			assert.Error(t, err)

			rows, err := s.ReadAll(ctx, TablePledges)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, s.Append(ctx, TablePledges, pledgeRow(fmt.Sprintf("DMHM-C%05d", i))))
				}(i)
			}
			wg.Wait()

			rows, err := s.ReadAll(ctx, TablePledges)
			require.NoError(t, err)
			assert.Len(t, rows, 20)
		})
	}
}

func TestCSVStore_WritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, TablePledges, pledgeRow("DMHM-AAAAAA")))
	require.NoError(t, s.Append(ctx, TablePledges, pledgeRow("DMHM-BBBBBB")))

	data, err := os.ReadFile(filepath.Join(dir, "pledges.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(models.PledgeColumns, ","), lines[0])
	assert.Equal(t, 1, strings.Count(string(data), "reference_code"))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, TablePledges, pledgeRow("DMHM-AAAAAA")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.ReadAll(ctx, TablePledges)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "DMHM-AAAAAA", rows[0][8])
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("postgres", t.TempDir())
	assert.Error(t, err)
}

func TestRecords_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			r := NewRecords(s)
			ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

			rsvp := models.RSVPRecord{
				Timestamp:     ts,
				InviteCode:    "ABC123",
				PartyLabel:    "Smith Family",
				Attending:     models.AttendingYes,
				AttendeeCount: 3,
				Dietary:       "vegetarian",
				SongRequest:   "September",
			}
			require.NoError(t, r.AppendRSVP(ctx, rsvp))

			pledge := models.PledgeRecord{
				Timestamp:     ts,
				InviteCode:    "ABC123",
				PartyLabel:    "Smith Family",
				Token:         "Date Night 🍷",
				Amount:        700,
				Area:          "Grahamstown",
				WantsUpdate:   true,
				ReferenceCode: "DMHM-XYZ789",
			}
			require.NoError(t, r.AppendPledge(ctx, pledge))

			rsvps, err := r.RSVPs(ctx)
			require.NoError(t, err)
			require.Len(t, rsvps, 1)
			assert.True(t, rsvps[0].Timestamp.Equal(ts))
			rsvps[0].Timestamp = ts
			assert.Equal(t, rsvp, rsvps[0])

			pledges, err := r.Pledges(ctx)
			require.NoError(t, err)
			require.Len(t, pledges, 1)
			assert.True(t, pledges[0].Timestamp.Equal(ts))
			pledges[0].Timestamp = ts
			assert.Equal(t, pledge, pledges[0])

			exists, err := r.ReferenceExists(ctx, "DMHM-XYZ789")
			require.NoError(t, err)
			assert.True(t, exists)
			exists, err = r.ReferenceExists(ctx, "DMHM-000000")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}
