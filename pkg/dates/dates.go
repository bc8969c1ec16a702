// Package dates provides pure helpers for the calendar-date arithmetic the
// rest of the system is built on. Completion records, challenge windows and
// all statistics operate on whole days in UTC; every time value crossing a
// package boundary is expected to have gone through Midnight first.
package dates

import "time"

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after (or before, for negative n) t,
// normalized to midnight.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t.AddDate(0, 0, n))
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// StartOfMonth returns the first day of t's month at midnight.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts t by n calendar months, normalized to midnight.
// Callers that need month windows should shift a StartOfMonth value so the
// day-of-month never overflows.
func AddMonths(t time.Time, n int) time.Time {
	return Midnight(t.AddDate(0, n, 0))
}

// DaysBetween returns the number of whole days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
