// Package dateutils provides the date parsing used by the statement import
// reconciler. Bank exports mix European, ISO and US layouts, with and
// without a time component, and one API export format uses raw unix
// timestamps.
package dateutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Common date format constants used throughout the engine.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonFormats is the ordered list of layouts tried when parsing statement
// dates. Layouts with a time component come first so they are not truncated
// by a shorter match.
var CommonFormats = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	DateLayoutFull,
	DateLayoutISO,
	DateLayoutEuropean,
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
}

// ParseDate attempts to parse a statement date using the common layouts,
// falling back to unix-seconds timestamps of at least nine digits.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if len(raw) >= 9 && isDigits(raw) {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
	}

	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// TruncateToDay drops the time component, keeping the calendar day in UTC.
// Dedup keys compare days, not instants.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysApart returns the absolute distance in calendar days between two
// dates.
func DaysApart(a, b time.Time) int {
	d := int(TruncateToDay(a).Sub(TruncateToDay(b)).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
