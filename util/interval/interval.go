// Package interval holds the date-range arithmetic the booking engine is
// built on. Dates are day-granular; callers pass midnight-UTC times.
package interval

import "time"

// Overlaps reports whether a candidate range conflicts with a busy range
// once the trailing buffer is applied to the busy range. bufferDays models
// the turnaround (inspection, cleaning) after a booking's nominal end; the
// busy range blocks up to but excluding busyEnd+buffer, so a candidate may
// start exactly at that instant.
//
// Conflict iff candStart < busyEnd+buffer AND candEnd >= busyStart.
func Overlaps(candStart, candEnd, busyStart, busyEnd time.Time, bufferDays int) bool {
	blockedUntil := busyEnd.AddDate(0, 0, bufferDays)
	return candStart.Before(blockedUntil) && !candEnd.Before(busyStart)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
