package birthday

import (
	"strings"
	"time"
)

// Accepted date-of-birth layouts. Directories fed by imports tend to mix plain
// dates with full timestamps, so both are tolerated.
var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// ParseDOB parses a stored date-of-birth string. Only the calendar components
// matter to the pipeline; the time of day, if present, is discarded.
func ParseDOB(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &MalformedDateError{Value: value}
}

// MatchesDay reports whether dob falls on the same month and day as ref.
// The year is ignored: a 1990-03-15 birth matches every March 15th.
func MatchesDay(ref time.Time, dob string) (bool, error) {
	d, err := ParseDOB(dob)
	if err != nil {
		return false, err
	}
	return d.Month() == ref.Month() && d.Day() == ref.Day(), nil
}
