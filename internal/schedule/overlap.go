// Package schedule holds the calendar arithmetic behind lease conflict
// checking and recurring payment generation. Everything here is pure: dates
// in, dates out, no clock and no storage.
package schedule

import "time"

// Overlaps reports whether two lease intervals share at least one day.
// A nil end date means the interval is unbounded into the future.
func Overlaps(existingStart time.Time, existingEnd *time.Time, newStart time.Time, newEnd *time.Time) bool {
	// Ongoing existing lease: conflicts with anything starting on or after it
	if existingEnd == nil {
		return !newStart.Before(existingStart)
	}

	// Ongoing new lease: conflicts if it starts before the existing lease ends
	if newEnd == nil {
		return !newStart.After(*existingEnd)
	}

	// Both bounded: no overlap iff new ends before existing starts or new
	// starts after existing ends
	return !(newEnd.Before(existingStart) || newStart.After(*existingEnd))
}
