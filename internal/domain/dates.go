package domain

import "time"

// Dates in the ledger are civil dates carried as midnight UTC.

// Date returns the civil date y-m-d.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the civil date of instant t as observed in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Date(y, m, d)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodOf returns the first day of the month containing date.
func PeriodOf(date time.Time) time.Time {
	y, m, _ := date.Date()
	return Date(y, m, 1)
}

// SamePeriod reports whether two civil dates fall in the same calendar month.
func SamePeriod(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
