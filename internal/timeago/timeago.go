// Package timeago renders timestamps as short relative ages like
// "5m ago" or "3d ago".
package timeago

import (
	"fmt"
	"time"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	month  = 30 * day
	year   = 365 * day
)

// Format renders the age of then relative to now. Timestamps in the
// future clamp to "just now".
func Format(now, then time.Time) string {
	return FormatDuration(now.Sub(then))
}

// FormatDuration renders an elapsed duration as a relative age. Buckets
// widen with age so that any two durations in the same bucket render
// identically and a longer duration never renders as a smaller value.
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < minute:
		return "just now"
	case seconds < hour:
		return fmt.Sprintf("%dm ago", seconds/minute)
	case seconds < day:
		return fmt.Sprintf("%dh ago", seconds/hour)
	case seconds < month:
		return fmt.Sprintf("%dd ago", seconds/day)
	case seconds < year:
		return fmt.Sprintf("%dmo ago", seconds/month)
	default:
		return fmt.Sprintf("%dy ago", seconds/year)
	}
}
