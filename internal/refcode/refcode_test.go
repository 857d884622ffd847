package refcode

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	pattern := regexp.MustCompile(`^DMHM-[A-Z0-9]{6}$`)
	for i := 0; i < 500; i++ {
		code, err := Generate("DMHM")
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		require.True(t, Valid(code, "DMHM"), code)
	}
}

func TestGenerate_DefaultPrefix(t *testing.T) {
	code, err := Generate("")
	require.NoError(t, err)
	assert.Regexp(t, `^DMHM-[A-Z0-9]{6}$`, code)
}

func TestGenerate_CustomPrefix(t *testing.T) {
	code, err := Generate("WED")
	require.NoError(t, err)
	assert.Regexp(t, `^WED-[A-Z0-9]{6}$`, code)
	assert.False(t, Valid(code, "DMHM"))
}

func TestGenerate_UsesWholeAlphabet(t *testing.T) {
	seen := make(map[byte]bool)
	for i := 0; i < 2000; i++ {
		code, err := Generate("X")
		require.NoError(t, err)
		for j := 2; j < len(code); j++ {
			seen[code[j]] = true
		}
	}
	// 12000 draws over 36 symbols; missing one is vanishingly unlikely.
	assert.Len(t, seen, len(alphabet))
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"DMHM-AB12CD", true},
		{"DMHM-ab12cd", false},
		{"DMHM-AB12C", false},
		{"DMHM-AB12CDE", false},
		{"DMHMAB12CD", false},
		{"XXXX-AB12CD", false},
		{"DMHM-AB-2CD", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code, "DMHM"))
		})
	}
}
