package guests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGuests = "\ufeffInvite_Code,Party_Label,party_size_min,party_size_max,plus_one_allowed,notes\n" +
	"abc123,Smith Family,1,4,yes,\n" +
	"SOLO1,Jane Doe,1,1,no,vegetarian\n" +
	"BROKEN,Nobody,two,3,no,\n" +
	"BACKWARDS,Reversed,3,1,no,\n" +
	",No Code,1,1,no,\n"

func writeGuests(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guests.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDirectory_Lookup(t *testing.T) {
	d := NewDirectory(writeGuests(t, sampleGuests), zerolog.Nop())
	ctx := context.Background()

	g, err := d.Lookup(ctx, "  abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", g.InviteCode)
	assert.Equal(t, "Smith Family", g.PartyLabel)
	assert.Equal(t, 1, g.PartySizeMin)
	assert.Equal(t, 4, g.PartySizeMax)
	assert.True(t, g.PlusOneAllowed)

	g, err = d.Lookup(ctx, "solo1")
	require.NoError(t, err)
	assert.True(t, g.FixedPartySize())
	assert.Equal(t, "vegetarian", g.Notes)
}

func TestDirectory_LookupNotFound(t *testing.T) {
	d := NewDirectory(writeGuests(t, sampleGuests), zerolog.Nop())

	for _, code := range []string{"NOPE", "", "   ", "BROKEN"} {
		_, err := d.Lookup(context.Background(), code)
		assert.ErrorIs(t, err, ErrNotFound, "code %q", code)
	}
}

func TestDirectory_AllSkipsMalformedRows(t *testing.T) {
	d := NewDirectory(writeGuests(t, sampleGuests), zerolog.Nop())

	all, err := d.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ABC123", all[0].InviteCode)
	assert.Equal(t, "SOLO1", all[1].InviteCode)
}

func TestDirectory_Unavailable(t *testing.T) {
	tests := map[string]string{
		"missing column": "invite_code,party_label,party_size_min\nA,B,1\n",
		"empty file":     "",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDirectory(writeGuests(t, content), zerolog.Nop())
			_, err := d.Lookup(context.Background(), "A")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		d := NewDirectory(filepath.Join(t.TempDir(), "absent.csv"), zerolog.Nop())
		_, err := d.All(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDirectory_ReadsEditsWithoutRestart(t *testing.T) {
	path := writeGuests(t, "invite_code,party_label,party_size_min,party_size_max\nFIRST,One,1,1\n")
	d := NewDirectory(path, zerolog.Nop())

	_, err := d.Lookup(context.Background(), "SECOND")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(path, []byte("invite_code,party_label,party_size_min,party_size_max\nSECOND,Two,2,2\n"), 0644))
	g, err := d.Lookup(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, 2, g.PartySizeMax)
}
