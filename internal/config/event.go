package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// DetourTokenKey names the open-ended token whose amount starts at zero.
const DetourTokenKey = "detour"

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return d.Time(time.UTC).Format(dateLayout)
}

// Format renders the date with a time layout.
func (d Date) Format(layout string) string {
	return d.Time(time.UTC).Format(layout)
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Token is a honeymoon gift option guests can pledge toward.
type Token struct {
	Key           string `yaml:"key"`
	Label         string `yaml:"label"`
	DefaultAmount int    `yaml:"default_amount"`
	MinAmount     int    `yaml:"min_amount"`
	MaxAmount     int    `yaml:"max_amount"`
	Help          string `yaml:"help"`
}

// StartAmount is the amount pre-filled in the pledge form.
func (t Token) StartAmount() int {
	if t.Key == DetourTokenKey {
		return t.MinAmount
	}
	return t.DefaultAmount
}

// Allows reports whether amount lies within the token's range.
func (t Token) Allows(amount int) bool {
	return amount >= t.MinAmount && amount <= t.MaxAmount
}

// Event is the static description of the wedding. It is built once at
// startup and shared read-only by every component.
type Event struct {
	CoupleNames       string   `yaml:"couple_names"`
	WeddingDate       Date     `yaml:"wedding_date"`
	RSVPDeadline      Date     `yaml:"rsvp_deadline"`
	TimeZone          string   `yaml:"time_zone"`
	VenueName         string   `yaml:"venue_name"`
	VenueMapLink      string   `yaml:"venue_map_link"`
	StartTimeText     string   `yaml:"start_time_text"`
	DressCode         string   `yaml:"dress_code"`
	AccommodationNote string   `yaml:"accommodation_note"`
	RouteSummary      string   `yaml:"route_summary"`
	RouteAreas        []string `yaml:"route_areas"`
	Tokens            []Token  `yaml:"tokens"`
	ReferencePrefix   string   `yaml:"reference_prefix"`
	PaymentNote       string   `yaml:"payment_note"`

	loc *time.Location
}

// DefaultEvent returns the built-in event description.
func DefaultEvent() *Event {
	e := &Event{
		CoupleNames:       "Damian & Megan",
		WeddingDate:       Date{Year: 2026, Month: time.May, Day: 30},
		RSVPDeadline:      Date{Year: 2026, Month: time.April, Day: 15},
		TimeZone:          "Africa/Johannesburg",
		VenueName:         "Sugar Baron Distillery",
		VenueMapLink:      "https://share.google/eDwOEY9LEIYKsZOR3",
		StartTimeText:     "14:30 for 15:00 (till late)",
		DressCode:         "Garden party",
		AccommodationNote: "The Oaks Hotel is a recommended option for accommodation.",
		RouteSummary:      "Howick → Clarens/Fouriesburg → Kimberley → Upington/Augrabies → West Coast → Oudtshoorn/George → Grahamstown → home-ish",
		RouteAreas: []string{
			"Howick / KZN (Start)",
			"Clarens / Fouriesburg",
			"Kimberley (via)",
			"Upington / Augrabies",
			"West Coast",
			"Oudtshoorn / George",
			"Grahamstown",
			"Wildcard / Surprise us",
		},
		Tokens: []Token{
			{Key: "fuel", Label: "Fuel for the Long Haul ⛽", DefaultAmount: 500, MaxAmount: 500, Help: "Help us survive the long stretches."},
			{Key: "nest", Label: "A Night’s Nest 🛏️", DefaultAmount: 1300, MaxAmount: 1300, Help: "A cosy stop somewhere on the route."},
			{Key: "datenight", Label: "Date Night 🍷", DefaultAmount: 700, MaxAmount: 700, Help: "Dinner somewhere special."},
			{Key: "experience", Label: "Experience Token 🌄", DefaultAmount: 1500, MaxAmount: 1500, Help: "An activity, a tour, a tasting, a view."},
			{Key: "padkos", Label: "Padkos & Coffee ☕🥪", DefaultAmount: 150, MaxAmount: 150, Help: "Roadtrip fuel (the snack kind)."},
			{Key: DetourTokenKey, Label: "Detour Token 🗺️", DefaultAmount: 0, MaxAmount: 2500, Help: "Name the detour. Set the amount. Cause chaos (nicely)."},
		},
		ReferencePrefix: "DMHM",
		PaymentNote:     "EFT details will be shown here once added. For now, please use the EFT details from your invite message and paste the reference code above.",
	}
	e.loc = mustLocation(e.TimeZone)
	return e
}

// LoadEvent reads the event YAML at path. An empty path yields DefaultEvent.
// Fields missing from the file keep their default values.
func LoadEvent(path string) (*Event, error) {
	e := DefaultEvent()
	if path == "" {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event config: %w", err)
	}
	if err := yaml.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to parse event config: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the event for inconsistent values and resolves the time zone.
func (e *Event) Validate() error {
	var errs []error
	if e.WeddingDate.IsZero() {
		errs = append(errs, errors.New("wedding_date is required"))
	}
	if e.RSVPDeadline.IsZero() {
		errs = append(errs, errors.New("rsvp_deadline is required"))
	}
	if e.WeddingDate.Before(e.RSVPDeadline) {
		errs = append(errs, errors.New("rsvp_deadline must not be after wedding_date"))
	}
	if len(e.RouteAreas) == 0 {
		errs = append(errs, errors.New("at least one route area is required"))
	}
	if len(e.Tokens) == 0 {
		errs = append(errs, errors.New("at least one token is required"))
	}
	seen := make(map[string]bool, len(e.Tokens))
	for _, t := range e.Tokens {
		if t.Key == "" {
			errs = append(errs, fmt.Errorf("token %q has no key", t.Label))
			continue
		}
		if seen[t.Key] {
			errs = append(errs, fmt.Errorf("duplicate token key %q", t.Key))
		}
		seen[t.Key] = true
		if t.MinAmount < 0 || t.MinAmount > t.MaxAmount {
			errs = append(errs, fmt.Errorf("token %q: invalid range [%d,%d]", t.Key, t.MinAmount, t.MaxAmount))
		}
		if !t.Allows(t.DefaultAmount) {
			errs = append(errs, fmt.Errorf("token %q: default %d outside [%d,%d]", t.Key, t.DefaultAmount, t.MinAmount, t.MaxAmount))
		}
	}

	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid time_zone %q: %w", e.TimeZone, err))
	} else {
		e.loc = loc
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid event config: %w", errors.Join(errs...))
	}
	return nil
}

// Location is the time zone the event dates are expressed in.
func (e *Event) Location() *time.Location {
	if e.loc == nil {
		return time.Local
	}
	return e.loc
}

// RSVPOpen reports whether now falls on or before the RSVP deadline date.
func (e *Event) RSVPOpen(now time.Time) bool {
	today := DateOf(now.In(e.Location()))
	return !e.RSVPDeadline.Before(today)
}

// TokenByKey returns the token with the given key.
func (e *Event) TokenByKey(key string) (Token, bool) {
	for _, t := range e.Tokens {
		if t.Key == key {
			return t, true
		}
	}
	return Token{}, false
}

// HasArea reports whether area is one of the configured route areas.
func (e *Event) HasArea(area string) bool {
	for _, a := range e.RouteAreas {
		if a == area {
			return true
		}
	}
	return false
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
