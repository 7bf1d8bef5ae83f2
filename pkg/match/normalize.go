package match

import (
	"strings"
	"time"
	"unicode"
)

// NormalizeTitle lowercases the input and strips every rune that is not a
// letter or digit. Titles and studio names are compared in this form; an
// empty result never matches another empty result.
func NormalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// NormalizeDate parses a date-like string to a UTC calendar date. Missing or
// unparseable input yields nil, never an error.
func NormalizeDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// daysApart returns the absolute distance in calendar days between two
// midnight-normalized dates.
func daysApart(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// truncateDate drops any time-of-day component a caller may have left on a
// Scene date so window arithmetic stays calendar-based.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
