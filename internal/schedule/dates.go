package schedule

import (
	"time"

	"github.com/yourorg/rentease/internal/domain"
)

// Dates computes the ordered list of due dates for a recurring payment series
// between start and end inclusive. dueDay is the requested day of month,
// clamped to the last day of any shorter month; a dueDay of 31 lands on
// Feb 28 (or 29), Apr 30 and so on, never drifting into the next month.
// The result is computed eagerly and may be empty.
func Dates(start, end time.Time, freq domain.Frequency, dueDay int) []time.Time {
	if dueDay < 1 || dueDay > 31 || !freq.Valid() || end.Before(start) {
		return nil
	}

	step := freq.Months()
	year, month := start.Year(), start.Month()

	cur := clampToMonth(year, month, dueDay)
	if cur.Before(start) {
		year, month = addMonths(year, month, step)
		cur = clampToMonth(year, month, dueDay)
	}

	var dates []time.Time
	for !cur.After(end) {
		dates = append(dates, cur)
		year, month = addMonths(year, month, step)
		cur = clampToMonth(year, month, dueDay)
	}
	return dates
}

// clampToMonth returns the date in (year, month) with day = min(dueDay, last
// day of that month), at UTC midnight.
func clampToMonth(year int, month time.Month, dueDay int) time.Time {
	day := dueDay
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// addMonths advances a (year, month) pair, normalizing past December
func addMonths(year int, month time.Month, months int) (int, time.Month) {
	t := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// daysIn returns the number of days in the given month, leap years included
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
