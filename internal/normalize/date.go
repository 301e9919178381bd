package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoDate marks a blank or placeholder date token.
	ErrNoDate = errors.New("no date")
	// ErrInvalidDate is returned when no layout matches.
	ErrInvalidDate = errors.New("invalid date")
)

// DateFormats is a primary Go layout plus ordered fallbacks.
type DateFormats struct {
	Primary   string   `yaml:"primary"`
	Fallbacks []string `yaml:"fallbacks,omitempty"`
}

// DefaultDateFormats covers the layouts seen across Russian bank exports.
func DefaultDateFormats() DateFormats {
	return DateFormats{
		Primary:   "02.01.2006",
		Fallbacks: []string{"01/02/2006", "2006-01-02", "02/01/2006", "01.02.2006"},
	}
}

// Layouts returns the primary layout followed by the fallbacks.
func (f DateFormats) Layouts() []string {
	out := make([]string, 0, len(f.Fallbacks)+1)
	if f.Primary != "" {
		out = append(out, f.Primary)
	}
	return append(out, f.Fallbacks...)
}

var absentDates = map[string]bool{"": true, "null": true, "n/a": true, "-": true}

// ParseDate tries each layout in order and returns the calendar date at
// midnight UTC.
func ParseDate(raw string, f DateFormats) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if absentDates[strings.ToLower(s)] {
		return time.Time{}, ErrNoDate
	}
	for _, layout := range f.Layouts() {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// IsAbsentDate reports whether raw is a blank or placeholder token.
func IsAbsentDate(raw string) bool {
	return absentDates[strings.ToLower(strings.TrimSpace(raw))]
}
