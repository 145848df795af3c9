package reports

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

const dayLayout = "2006-01-02"

var ErrInvalidDateRange = pkgerrors.New(pkgerrors.CodeValidation, "Invalid date parameters")

// Range is an inclusive reporting window in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange accepts YYYY-MM-DD or RFC3339 bounds. A bare end date covers
// the whole day.
func ParseRange(start, end string) (Range, error) {
	s, _, err := parseBound(start)
	if err != nil {
		return Range{}, err
	}
	e, dateOnly, err := parseBound(end)
	if err != nil {
		return Range{}, err
	}
	if dateOnly {
		e = e.Add(24*time.Hour - time.Nanosecond)
	}
	if e.Before(s) {
		return Range{}, ErrInvalidDateRange
	}
	return Range{Start: s, End: e}, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, ErrInvalidDateRange
	}
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, ErrInvalidDateRange
	}
	return t.UTC(), false, nil
}

// Previous is the window of equal length ending where r starts.
func (r Range) Previous() Range {
	return Range{Start: r.Start.Add(-r.End.Sub(r.Start)), End: r.Start}
}

// Contains reports whether t falls inside the inclusive window.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Period renders the window as "YYYY-MM-DD to YYYY-MM-DD".
func (r Range) Period() string {
	return r.Start.UTC().Format(dayLayout) + " to " + r.End.UTC().Format(dayLayout)
}
