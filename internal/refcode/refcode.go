// Package refcode generates payment reference codes for pledges.
package refcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultPrefix is used when no prefix is given.
const DefaultPrefix = "DMHM"

// Length is the number of random symbols after the hyphen.
const Length = 6

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate returns "PREFIX-XXXXXX" with symbols drawn uniformly from A-Z0-9.
func Generate(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(len(prefix) + 1 + Length)
	b.WriteString(prefix)
	b.WriteByte('-')
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Valid reports whether code has the shape produced by Generate for prefix.
func Valid(code, prefix string) bool {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	rest, ok := strings.CutPrefix(code, prefix+"-")
	if !ok || len(rest) != Length {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !strings.ContainsRune(alphabet, rune(rest[i])) {
			return false
		}
	}
	return true
}
