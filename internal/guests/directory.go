// Package guests looks up invited parties in the guest list CSV.
package guests

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"wedding-site/internal/models"
)

var (
	// ErrNotFound is returned when no guest has the requested invite code.
	ErrNotFound = errors.New("guest not found")
	// ErrUnavailable is returned when the guest list cannot be read at all.
	ErrUnavailable = errors.New("guest list unavailable")
)

var requiredColumns = []string{"invite_code", "party_label", "party_size_min", "party_size_max"}

// Directory reads the guest list from disk on every lookup, so edits to the
// file show up without a restart.
type Directory struct {
	path string
	log  zerolog.Logger
}

// NewDirectory creates a directory backed by the CSV file at path.
func NewDirectory(path string, log zerolog.Logger) *Directory {
	return &Directory{
		path: path,
		log:  log.With().Str("component", "guests").Logger(),
	}
}

// Path returns the location of the guest list.
func (d *Directory) Path() string {
	return d.path
}

// Lookup finds the guest whose invite code matches code, ignoring case and
// surrounding whitespace.
func (d *Directory) Lookup(ctx context.Context, code string) (models.Guest, error) {
	code = models.NormalizeInviteCode(code)
	if code == "" {
		return models.Guest{}, ErrNotFound
	}

	guests, err := d.All(ctx)
	if err != nil {
		return models.Guest{}, err
	}
	for _, g := range guests {
		if g.InviteCode == code {
			return g, nil
		}
	}
	return models.Guest{}, ErrNotFound
}

// All returns every valid guest row in file order. Malformed rows are logged
// and skipped.
func (d *Directory) All(ctx context.Context) ([]models.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()

	guests, err := d.parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return guests, nil
}

func (d *Directory) parse(r io.Reader) ([]models.Guest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("guest list is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("guest list is missing column %q", col)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var guests []models.Guest
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		g, err := parseGuest(field, row)
		if err != nil {
			d.log.Warn().Err(err).Int("line", line).Msg("Skipping guest row")
			continue
		}
		guests = append(guests, g)
	}
	return guests, nil
}

func parseGuest(field func([]string, string) string, row []string) (models.Guest, error) {
	code := models.NormalizeInviteCode(field(row, "invite_code"))
	if code == "" {
		return models.Guest{}, errors.New("empty invite_code")
	}
	minSize, err := strconv.Atoi(field(row, "party_size_min"))
	if err != nil {
		return models.Guest{}, fmt.Errorf("invalid party_size_min for %s: %w", code, err)
	}
	maxSize, err := strconv.Atoi(field(row, "party_size_max"))
	if err != nil {
		return models.Guest{}, fmt.Errorf("invalid party_size_max for %s: %w", code, err)
	}
	if minSize < 0 || minSize > maxSize {
		return models.Guest{}, fmt.Errorf("invalid party size range [%d,%d] for %s", minSize, maxSize, code)
	}
	plusOne, err := models.ParseBool(field(row, "plus_one_allowed"))
	if err != nil {
		return models.Guest{}, fmt.Errorf("invalid plus_one_allowed for %s: %w", code, err)
	}

	return models.Guest{
		InviteCode:     code,
		PartyLabel:     field(row, "party_label"),
		PartySizeMin:   minSize,
		PartySizeMax:   maxSize,
		PlusOneAllowed: plusOne,
		Notes:          field(row, "notes"),
	}, nil
}
