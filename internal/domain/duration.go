package domain

import (
	"strconv"
	"time"
)

const day = 24 * time.Hour

// DurationLabel formats the length of iv for display, e.g. "2 days, 4 hours"
// or "1 hour, 30 minutes". The difference is taken in UTC.
//
//   - one day or more: days, plus hours when non-zero (minutes are dropped)
//   - one hour or more: hours, plus minutes when non-zero
//   - otherwise: minutes, so anything under a minute is "0 minutes"
func DurationLabel(iv Interval) string {
	d := iv.End().Sub(iv.Start())
	days := int(d / day)
	hours := int((d % day) / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)

	switch {
	case days > 0:
		label := plural(days, "day")
		if hours > 0 {
			label += ", " + plural(hours, "hour")
		}
		return label
	case hours > 0:
		label := plural(hours, "hour")
		if minutes > 0 {
			label += ", " + plural(minutes, "minute")
		}
		return label
	default:
		return plural(minutes, "minute")
	}
}

// plural renders "1 hour" or "n hours"; zero is plural.
func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}
