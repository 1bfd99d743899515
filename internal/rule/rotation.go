package rule

import (
	"time"

	"github.com/rowanvale/chorewheel/internal/calendar"
)

// RoundRobin returns the child responsible for the nth occurrence
// (0-indexed) of a task, cycling through the ordered children list.
// Returns nil when no children are assigned.
func RoundRobin(children []int64, n int) *int64 {
	if len(children) == 0 {
		return nil
	}
	id := children[n%len(children)]
	return &id
}

// ChildForWeek picks the child for date by indexing the ordered children
// list with the date's ISO week number modulo the list length. With two
// children this is the classic odd-week/even-week split: odd weeks pick
// index 1, even weeks index 0.
func ChildForWeek(children []int64, date time.Time) *int64 {
	if len(children) == 0 {
		return nil
	}
	id := children[calendar.ISOWeekNumber(date)%len(children)]
	return &id
}

// Alternator hands out children one per call, advancing cyclically from
// the most recent prior assignment. Within a batch each date's choice
// chains off the previous date's, not off stored history.
type Alternator struct {
	children []int64
	next     int
}

// NewAlternator seeds the cycle from the last assigned child, or nil when
// the task has no assignment history. A last child no longer present in
// the children list is treated the same as no history.
func NewAlternator(children []int64, last *int64) *Alternator {
	a := &Alternator{children: children}
	if last == nil {
		return a
	}
	for i, id := range children {
		if id == *last {
			a.next = (i + 1) % len(children)
			break
		}
	}
	return a
}

// Next returns the next child in the cycle and advances.
func (a *Alternator) Next() int64 {
	id := a.children[a.next]
	a.next = (a.next + 1) % len(a.children)
	return id
}
