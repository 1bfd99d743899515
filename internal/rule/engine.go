package rule

import (
	"fmt"
	"time"

	"github.com/rowanvale/chorewheel/internal/calendar"
)

// Occurrence is one generated (date, child) pair for a task. ChildID is
// nil when the task has no assigned children.
type Occurrence struct {
	Date    time.Time
	ChildID *int64
}

// HistoryFunc reports the most recently assigned child for the task
// strictly before the given date, or nil when there is none. Only
// alternating rotation consults it.
type HistoryFunc func(before time.Time) (*int64, error)

// Expand applies r over days contiguous dates starting at start and
// returns the occurrences to persist, in chronological order. Re-running
// with the same inputs and history yields the same occurrences.
func Expand(r Rule, start time.Time, days int, history HistoryFunc) ([]Occurrence, error) {
	dates := calendar.EnumerateDates(start, days)

	switch r.Kind {
	case Daily:
		occs := make([]Occurrence, 0, len(dates))
		for i, d := range dates {
			occs = append(occs, Occurrence{Date: d, ChildID: RoundRobin(r.Children, i)})
		}
		return occs, nil

	case Repeating:
		var occs []Occurrence
		n := 0
		for _, d := range dates {
			if !r.RepeatDays[calendar.Weekday(d)] {
				continue
			}
			occs = append(occs, Occurrence{Date: d, ChildID: RoundRobin(r.Children, n)})
			n++
		}
		return occs, nil

	case WeeklyRotation:
		occs := make([]Occurrence, 0, len(dates))
		switch r.Rotation {
		case OddEvenWeek:
			for _, d := range dates {
				occs = append(occs, Occurrence{Date: d, ChildID: ChildForWeek(r.Children, d)})
			}
		case Alternating:
			last, err := history(calendar.Midnight(start))
			if err != nil {
				return nil, fmt.Errorf("look up assignment history: %w", err)
			}
			alt := NewAlternator(r.Children, last)
			for _, d := range dates {
				id := alt.Next()
				occs = append(occs, Occurrence{Date: d, ChildID: &id})
			}
		}
		return occs, nil
	}

	return nil, fmt.Errorf("unhandled rule kind %d", r.Kind)
}
