package calendar

import "time"

// Weekday returns the day of week for t with Sunday = 0 and Saturday = 6.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// ISOWeekNumber returns the ISO-8601 week number of t: week 1 is the week
// containing the year's first Thursday. Late-December dates can fall in
// week 1 of the next year and early-January dates in week 52/53 of the
// previous year.
func ISOWeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// ISOWeekYear returns the year the ISO week of t belongs to, which differs
// from t.Year() around year boundaries.
func ISOWeekYear(t time.Time) int {
	year, _ := t.ISOWeek()
	return year
}

// Midnight truncates t to midnight UTC, keeping only the calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EnumerateDates returns days contiguous calendar dates starting at start
// (inclusive), each normalized to midnight UTC. days <= 0 yields nil.
func EnumerateDates(start time.Time, days int) []time.Time {
	if days <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, days)
	d := Midnight(start)
	for i := 0; i < days; i++ {
		dates = append(dates, d.AddDate(0, 0, i))
	}
	return dates
}
