package rule

import (
	"testing"
	"time"
)

func noHistory(t *testing.T) HistoryFunc {
	t.Helper()
	return func(before time.Time) (*int64, error) {
		t.Fatal("history should not be consulted")
		return nil, nil
	}
}

func TestExpandDailyRoundRobin(t *testing.T) {
	r := Rule{Kind: Daily, Children: []int64{1, 2, 3}}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday

	occs, err := Expand(r, start, 7, noHistory(t))
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 7 {
		t.Fatalf("len = %d, want 7", len(occs))
	}

	want := []int64{1, 2, 3, 1, 2, 3, 1}
	for i, occ := range occs {
		wantDate := start.AddDate(0, 0, i)
		if !occ.Date.Equal(wantDate) {
			t.Errorf("occ[%d].Date = %v, want %v", i, occ.Date, wantDate)
		}
		if occ.ChildID == nil || *occ.ChildID != want[i] {
			t.Errorf("occ[%d].ChildID = %v, want %d", i, occ.ChildID, want[i])
		}
	}
}

func TestExpandDailyNoChildren(t *testing.T) {
	r := Rule{Kind: Daily}
	occs, err := Expand(r, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 3, noHistory(t))
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	for i, occ := range occs {
		if occ.ChildID != nil {
			t.Errorf("occ[%d].ChildID = %v, want nil", i, occ.ChildID)
		}
	}
}

func TestExpandRepeatingFiltersWeekdays(t *testing.T) {
	// Mon/Wed/Fri over a week starting Sunday June 1 2025.
	r := Rule{Kind: Repeating, RepeatDays: map[int]bool{1: true, 3: true, 5: true}}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs, err := Expand(r, start, 7, noHistory(t))
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("len = %d, want 3", len(occs))
	}

	wantDates := []time.Time{
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), // Mon
		time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), // Wed
		time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), // Fri
	}
	for i, occ := range occs {
		if !occ.Date.Equal(wantDates[i]) {
			t.Errorf("occ[%d].Date = %v, want %v", i, occ.Date, wantDates[i])
		}
	}
}

func TestExpandRepeatingRotatesOnQualifyingDaysOnly(t *testing.T) {
	// Two qualifying days per week with two children: the rotation index
	// advances once per qualifying day, skipped days contribute nothing.
	r := Rule{
		Kind:       Repeating,
		RepeatDays: map[int]bool{2: true, 4: true}, // Tue/Thu
		Children:   []int64{1, 2},
	}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // Sunday

	occs, err := Expand(r, start, 14, noHistory(t))
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("len = %d, want 4", len(occs))
	}
	want := []int64{1, 2, 1, 2}
	for i, occ := range occs {
		if occ.ChildID == nil || *occ.ChildID != want[i] {
			t.Errorf("occ[%d].ChildID = %v, want %d", i, occ.ChildID, want[i])
		}
	}
}

func TestExpandWeeklyRotationOddEvenCoversEveryDay(t *testing.T) {
	r := Rule{Kind: WeeklyRotation, Rotation: OddEvenWeek, Children: []int64{100, 200}}
	// Dec 29 2024 (Sunday, ISO week 52 of 2024) through Jan 4 2025;
	// crosses into ISO week 1 of 2025 at Dec 30.
	start := time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC)

	occs, err := Expand(r, start, 7, noHistory(t))
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 7 {
		t.Fatalf("len = %d, want 7 (every day gets an assignment)", len(occs))
	}

	// Week 52 is even (index 0), week 1 is odd (index 1).
	want := []int64{100, 200, 200, 200, 200, 200, 200}
	for i, occ := range occs {
		if occ.ChildID == nil || *occ.ChildID != want[i] {
			t.Errorf("occ[%d] (%s).ChildID = %v, want %d",
				i, occ.Date.Format("2006-01-02"), occ.ChildID, want[i])
		}
	}
}

func TestExpandAlternatingChainsPerDate(t *testing.T) {
	r := Rule{Kind: WeeklyRotation, Rotation: Alternating, Children: []int64{1, 2, 3}}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	last := int64(2) // stored assignment of child B on an earlier date
	history := func(before time.Time) (*int64, error) {
		if !before.Equal(start) {
			t.Errorf("history queried with %v, want %v", before, start)
		}
		return &last, nil
	}

	occs, err := Expand(r, start, 3, history)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	// Seeded after B: C, A, B.
	want := []int64{3, 1, 2}
	for i, occ := range occs {
		if occ.ChildID == nil || *occ.ChildID != want[i] {
			t.Errorf("occ[%d].ChildID = %v, want %d", i, occ.ChildID, want[i])
		}
	}
}

func TestExpandAlternatingNoHistoryStartsAtFirstChild(t *testing.T) {
	r := Rule{Kind: WeeklyRotation, Rotation: Alternating, Children: []int64{1, 2}}
	history := func(before time.Time) (*int64, error) { return nil, nil }

	occs, err := Expand(r, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 4, history)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	want := []int64{1, 2, 1, 2}
	for i, occ := range occs {
		if occ.ChildID == nil || *occ.ChildID != want[i] {
			t.Errorf("occ[%d].ChildID = %v, want %d", i, occ.ChildID, want[i])
		}
	}
}
