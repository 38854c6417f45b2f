// whoopclient/dates.go
package whoopclient

import (
	"time"
)

const isoMilli = "2006-01-02T15:04:05.000Z07:00"

// NormalizeStartISO converts a loose date input into the ISO-8601 timestamp of
// the first instant of the unit it names, in UTC with millisecond precision.
// Accepted shapes: "2024" (year), "2024-02" (month), "2024-02-15" (day), or a
// full RFC 3339 timestamp.
func NormalizeStartISO(s string) (string, error) {
	if t, ok := parseUnit(s); ok {
		return t.Format(isoMilli), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", &InvalidDateError{Input: s}
	}
	return t.UTC().Format(isoMilli), nil
}

// NormalizeEndISO converts a loose date input into the last instant of the
// unit it names (one millisecond before the next unit begins), in UTC. A full
// timestamp passes through unchanged.
func NormalizeEndISO(s string) (string, error) {
	if t, ok := parseUnit(s); ok {
		var next time.Time
		switch len(s) {
		case 4:
			next = t.AddDate(1, 0, 0)
		case 7:
			next = t.AddDate(0, 1, 0)
		default:
			next = t.AddDate(0, 0, 1)
		}
		return next.Add(-time.Millisecond).Format(isoMilli), nil
	}

	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return "", &InvalidDateError{Input: s}
	}
	return s, nil
}

// parseUnit parses the bare year, year-month and year-month-day shapes,
// returning the first instant of the unit in UTC.
func parseUnit(s string) (time.Time, bool) {
	for _, layout := range []string{"2006", "2006-01", "2006-01-02"} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
