package domain

import "time"

// DateOnly truncates t to midnight UTC. Booking date ranges are stored and
// compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayCount returns the number of billable days for an inclusive date range.
// A same-day booking is charged as one day.
func DayCount(start, end time.Time) int {
	days := int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Overlaps reports closed-interval intersection of [aStart,aEnd] and
// [bStart,bEnd].
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
