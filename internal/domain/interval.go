package domain

import (
	"strings"
	"time"
)

// Interval is a half-open time range [start, end).
// The zero value is not a valid interval; build one with NewInterval or
// ParseInterval. Both bounds are stored in UTC.
type Interval struct {
	start time.Time
	end   time.Time
}

// NewInterval returns the interval [start, end).
// Returns an *IntervalError when start is not strictly before end.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() {
		return Interval{}, &IntervalError{Field: "start_time", Reason: "is required"}
	}
	if end.IsZero() {
		return Interval{}, &IntervalError{Field: "end_time", Reason: "is required"}
	}
	if !start.Before(end) {
		return Interval{}, &IntervalError{Field: "end_time", Reason: "must be after start_time"}
	}
	return Interval{start: start.UTC(), end: end.UTC()}, nil
}

// MustInterval is NewInterval for fixtures; it panics on invalid bounds.
func MustInterval(start, end time.Time) Interval {
	iv, err := NewInterval(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// timeLayouts are tried in order by ParseInterval.
// Layouts without an offset are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseInterval parses raw start and end timestamps and builds the interval.
// Returns an *IntervalError naming the field that failed.
func ParseInterval(startRaw, endRaw string) (Interval, error) {
	start, err := parseTimestamp("start_time", startRaw)
	if err != nil {
		return Interval{}, err
	}
	end, err := parseTimestamp("end_time", endRaw)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(start, end)
}

func parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &IntervalError{Field: field, Reason: "is required"}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &IntervalError{Field: field, Reason: "is not a valid timestamp"}
}

// Start returns the inclusive lower bound.
func (iv Interval) Start() time.Time { return iv.start }

// End returns the exclusive upper bound.
func (iv Interval) End() time.Time { return iv.end }

// IsValid reports whether the interval was properly constructed.
func (iv Interval) IsValid() bool {
	return !iv.start.IsZero() && iv.start.Before(iv.end)
}

// Overlaps reports whether iv and other share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv, other)
}

// Overlaps is the half-open intersection test. Intervals that only touch
// (one ends exactly when the other starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

// StartsAfter reports whether the interval begins strictly after t.
func (iv Interval) StartsAfter(t time.Time) bool {
	return iv.start.After(t)
}
