package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rowanvale/chorewheel/internal/calendar"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/rule"
)

// Generation is bounded per request to keep batch cost predictable.
const (
	MinDays = 1
	MaxDays = 30
)

var ErrInvalidRange = errors.New("day count must be between 1 and 30")

// TaskSource lists the active task templates of a household.
type TaskSource interface {
	ListActive(householdID int64) ([]model.Task, error)
}

// AssignmentSink persists generated assignments and answers history
// lookups for alternating rotation.
type AssignmentSink interface {
	// InsertIfAbsent inserts an assignment unless one already exists for
	// (taskID, date). It reports whether a row was created.
	InsertIfAbsent(taskID int64, date time.Time, childID *int64) (bool, error)
	// MostRecentAssignedChild returns the child of the latest assignment
	// for taskID strictly before the given date, or nil if none exists.
	MostRecentAssignedChild(taskID int64, before time.Time) (*int64, error)
}

// TaskError reports a task that could not be generated.
type TaskError struct {
	TaskID int64  `json:"task_id"`
	Reason string `json:"reason"`
}

// Summary is the aggregate outcome of one generation run. Partial success
// is always observable: callers get counts plus per-task errors, never a
// bare pass/fail.
type Summary struct {
	Created int         `json:"created"`
	Skipped int         `json:"skipped"`
	Errors  []TaskError `json:"errors"`
}

// Generator produces assignments for a household's active tasks over a
// date range. It holds no state between runs; every rotation decision is
// derived from persisted data at call time, which is what makes re-runs
// and overlapping triggers safe.
type Generator struct {
	tasks       TaskSource
	assignments AssignmentSink
	logger      *slog.Logger
}

func New(tasks TaskSource, assignments AssignmentSink, logger *slog.Logger) *Generator {
	return &Generator{tasks: tasks, assignments: assignments, logger: logger}
}

// Generate creates one assignment per (task, date) for every active task
// of the household across days contiguous dates starting at start.
// Existing rows are skipped, a malformed task is reported and the batch
// continues, and failing to load the task list aborts the run.
func (g *Generator) Generate(householdID int64, start time.Time, days int) (*Summary, error) {
	if days < MinDays || days > MaxDays {
		return nil, ErrInvalidRange
	}
	if start.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	start = calendar.Midnight(start)

	tasks, err := g.tasks.ListActive(householdID)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}

	summary := &Summary{}
	for _, task := range tasks {
		g.generateTask(task, start, days, summary)
	}

	g.logger.Info("generation run complete",
		"household_id", householdID,
		"start", start.Format("2006-01-02"),
		"days", days,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

func (g *Generator) generateTask(task model.Task, start time.Time, days int, summary *Summary) {
	r, err := rule.Parse(task.RuleType, task.RuleConfig)
	if err != nil {
		g.logger.Warn("skipping task with invalid rule",
			"task_id", task.ID, "rule_type", task.RuleType, "error", err)
		summary.Errors = append(summary.Errors, TaskError{TaskID: task.ID, Reason: err.Error()})
		return
	}

	history := func(before time.Time) (*int64, error) {
		return g.assignments.MostRecentAssignedChild(task.ID, before)
	}

	occs, err := rule.Expand(r, start, days, history)
	if err != nil {
		summary.Errors = append(summary.Errors, TaskError{TaskID: task.ID, Reason: err.Error()})
		return
	}

	// Occurrences are already in chronological order; alternating rotation
	// depends on that within a batch.
	for _, occ := range occs {
		created, err := g.assignments.InsertIfAbsent(task.ID, occ.Date, occ.ChildID)
		if err != nil {
			summary.Errors = append(summary.Errors, TaskError{
				TaskID: task.ID,
				Reason: fmt.Sprintf("insert %s: %v", occ.Date.Format("2006-01-02"), err),
			})
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Skipped++
		}
	}
}
