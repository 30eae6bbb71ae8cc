package services

import "time"

const dateLayout = "2006-01-02"

// DateString formats a timestamp as a calendar date in its own location.
func DateString(t time.Time) string {
	return t.Format(dateLayout)
}

// SameCalendarDay reports whether both timestamps fall on the same
// calendar date, ignoring the time of day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween returns the whole-calendar-day difference between two
// "YYYY-MM-DD" strings (to - from). Elapsed hours are irrelevant: two
// entries 20 hours apart on the same date are 0 days apart, and entries 28
// hours apart on consecutive dates are 1 day apart.
func calendarDaysBetween(from, to string) (int, bool) {
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0, false
	}
	t, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0, false
	}
	return int(t.Sub(f).Hours() / 24), true
}
