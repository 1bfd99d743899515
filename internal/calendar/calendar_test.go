package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2025, time.June, 1), 0},  // Sunday
		{date(2025, time.June, 2), 1},  // Monday
		{date(2025, time.June, 7), 6},  // Saturday
		{date(2024, time.February, 29), 4}, // leap-day Thursday
	}
	for _, tt := range tests {
		if got := Weekday(tt.day); got != tt.want {
			t.Errorf("Weekday(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestISOWeekNumberYearBoundaries(t *testing.T) {
	tests := []struct {
		day      time.Time
		week     int
		weekYear int
	}{
		// Dec 30/31 2024 belong to week 1 of 2025.
		{date(2024, time.December, 30), 1, 2025},
		{date(2024, time.December, 31), 1, 2025},
		// Jan 1 2027 belongs to week 53 of 2026.
		{date(2027, time.January, 1), 53, 2026},
		// Jan 1 2025 is already week 1.
		{date(2025, time.January, 1), 1, 2025},
		// Jan 2 2028 belongs to week 52 of 2027.
		{date(2028, time.January, 2), 52, 2027},
		// Mid-year sanity check.
		{date(2025, time.June, 2), 23, 2025},
	}
	for _, tt := range tests {
		if got := ISOWeekNumber(tt.day); got != tt.week {
			t.Errorf("ISOWeekNumber(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.week)
		}
		if got := ISOWeekYear(tt.day); got != tt.weekYear {
			t.Errorf("ISOWeekYear(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.weekYear)
		}
	}
}

func TestEnumerateDates(t *testing.T) {
	start := date(2025, time.February, 27)
	dates := EnumerateDates(start, 4)

	if len(dates) != 4 {
		t.Fatalf("len = %d, want 4", len(dates))
	}
	if !dates[0].Equal(start) {
		t.Errorf("dates[0] = %v, want %v", dates[0], start)
	}
	// Crosses the Feb/Mar boundary (2025 is not a leap year).
	want := []time.Time{
		date(2025, time.February, 27),
		date(2025, time.February, 28),
		date(2025, time.March, 1),
		date(2025, time.March, 2),
	}
	for i, d := range dates {
		if !d.Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestEnumerateDatesNormalizes(t *testing.T) {
	loc := time.FixedZone("X", -7*3600)
	start := time.Date(2025, time.June, 2, 23, 45, 0, 0, loc)
	dates := EnumerateDates(start, 1)
	want := date(2025, time.June, 2)
	if !dates[0].Equal(want) {
		t.Errorf("dates[0] = %v, want %v", dates[0], want)
	}
}

func TestEnumerateDatesRestartable(t *testing.T) {
	start := date(2025, time.June, 1)
	first := EnumerateDates(start, 7)
	second := EnumerateDates(start, 7)
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("run mismatch at %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestEnumerateDatesEmpty(t *testing.T) {
	if got := EnumerateDates(date(2025, time.June, 1), 0); got != nil {
		t.Errorf("EnumerateDates(_, 0) = %v, want nil", got)
	}
	if got := EnumerateDates(date(2025, time.June, 1), -3); got != nil {
		t.Errorf("EnumerateDates(_, -3) = %v, want nil", got)
	}
}
