package generate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/rowanvale/chorewheel/internal/database"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/store"
)

type fixture struct {
	gen         *Generator
	tasks       *store.TaskStore
	assignments *store.AssignmentStore
	children    *store.ChildStore
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		tasks:       store.NewTaskStore(db),
		assignments: store.NewAssignmentStore(db),
		children:    store.NewChildStore(db),
	}
	f.gen = New(f.tasks, f.assignments, slog.New(slog.DiscardHandler))
	return f
}

func (f *fixture) child(t *testing.T, name string) int64 {
	t.Helper()
	c, err := f.children.Create(1, name, "", "", 0)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return c.ID
}

func (f *fixture) task(t *testing.T, title, ruleType, config string) *model.Task {
	t.Helper()
	var cfg json.RawMessage
	if config != "" {
		cfg = json.RawMessage(config)
	}
	task, err := f.tasks.Create(1, title, "", ruleType, cfg, 0)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestGenerateDailyRoundRobin(t *testing.T) {
	f := setup(t)
	a := f.child(t, "Ada")
	b := f.child(t, "Ben")
	c := f.child(t, "Cleo")
	f.task(t, "Dishes", "daily", fmt.Sprintf(`{"assigned_children": [%d, %d, %d]}`, a, b, c))

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 7 || sum.Skipped != 0 || len(sum.Errors) != 0 {
		t.Fatalf("summary = %+v, want 7 created", sum)
	}

	list, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{a, b, c, a, b, c, a}
	if len(list) != 7 {
		t.Fatalf("len = %d, want 7", len(list))
	}
	for i, asn := range list {
		if asn.ChildID == nil || *asn.ChildID != want[i] {
			t.Errorf("assignment[%d].ChildID = %v, want %d", i, asn.ChildID, want[i])
		}
		if asn.Status != model.AssignmentPending {
			t.Errorf("assignment[%d].Status = %q, want pending", i, asn.Status)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := setup(t)
	f.task(t, "Dishes", "daily", "")

	first, err := f.gen.Generate(1, day(t, "2025-06-02"), 5)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if first.Created != 5 {
		t.Fatalf("first created = %d, want 5", first.Created)
	}

	second, err := f.gen.Generate(1, day(t, "2025-06-02"), 5)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if second.Created != 0 {
		t.Errorf("second created = %d, want 0", second.Created)
	}
	if second.Skipped != first.Created {
		t.Errorf("second skipped = %d, want %d", second.Skipped, first.Created)
	}

	list, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("persisted rows = %d, want 5", len(list))
	}
}

func TestGenerateOverlappingRangeCreatesOnlyNewDates(t *testing.T) {
	f := setup(t)
	f.task(t, "Dishes", "daily", "")

	if _, err := f.gen.Generate(1, day(t, "2025-06-02"), 5); err != nil {
		t.Fatalf("generate: %v", err)
	}
	sum, err := f.gen.Generate(1, day(t, "2025-06-04"), 5)
	if err != nil {
		t.Fatalf("generate overlap: %v", err)
	}
	// June 4-6 exist already; June 7-8 are new.
	if sum.Created != 2 || sum.Skipped != 3 {
		t.Errorf("summary = %+v, want created 2 skipped 3", sum)
	}
}

func TestGenerateRepeatingOnlyOnRepeatDays(t *testing.T) {
	f := setup(t)
	f.task(t, "Trash", "repeating", `{"repeat_days": [1, 3, 5]}`)

	// Sunday June 1 through Saturday June 7.
	sum, err := f.gen.Generate(1, day(t, "2025-06-01"), 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 3 {
		t.Fatalf("created = %d, want 3", sum.Created)
	}

	list, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantDates := []string{"2025-06-02", "2025-06-04", "2025-06-06"}
	for i, asn := range list {
		if got := asn.Date.Format("2006-01-02"); got != wantDates[i] {
			t.Errorf("assignment[%d].Date = %s, want %s", i, got, wantDates[i])
		}
	}
}

func TestGenerateOddEvenWeekAtYearBoundary(t *testing.T) {
	f := setup(t)
	a := f.child(t, "Ada")
	b := f.child(t, "Ben")
	f.task(t, "Vacuum", "weekly_rotation",
		fmt.Sprintf(`{"rotation_type": "odd_even_week", "assigned_children": [%d, %d]}`, a, b))

	// Dec 30 2024 is ISO week 1 of 2025: odd, so index 1 (Ben).
	sum, err := f.gen.Generate(1, day(t, "2024-12-30"), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 1 {
		t.Fatalf("created = %d, want 1", sum.Created)
	}

	list, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ChildID == nil || *list[0].ChildID != b {
		t.Errorf("ChildID = %v, want Ben (%d)", list[0].ChildID, b)
	}
}

func TestGenerateAlternatingContinuesFromHistory(t *testing.T) {
	f := setup(t)
	a := f.child(t, "Ada")
	b := f.child(t, "Ben")
	c := f.child(t, "Cleo")
	task := f.task(t, "Feed cat", "weekly_rotation",
		fmt.Sprintf(`{"rotation_type": "alternating", "assigned_children": [%d, %d, %d]}`, a, b, c))

	// Stored history: Ben did it on day 0.
	if _, err := f.assignments.InsertIfAbsent(task.ID, day(t, "2025-06-01"), &b); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 3 {
		t.Fatalf("created = %d, want 3", sum.Created)
	}

	list, err := f.assignments.List(1, store.ListFilter{From: day(t, "2025-06-02")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Chained per date after Ben: Cleo, Ada, Ben.
	want := []int64{c, a, b}
	for i, asn := range list {
		if asn.ChildID == nil || *asn.ChildID != want[i] {
			t.Errorf("assignment[%d].ChildID = %v, want %d", i, asn.ChildID, want[i])
		}
	}
}

func TestGenerateAlternatingRerunReproducesSameChoices(t *testing.T) {
	f := setup(t)
	a := f.child(t, "Ada")
	b := f.child(t, "Ben")
	f.task(t, "Feed cat", "weekly_rotation",
		fmt.Sprintf(`{"rotation_type": "alternating", "assigned_children": [%d, %d]}`, a, b))

	if _, err := f.gen.Generate(1, day(t, "2025-06-02"), 4); err != nil {
		t.Fatalf("generate: %v", err)
	}
	before, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 4)
	if err != nil {
		t.Fatalf("re-generate: %v", err)
	}
	if sum.Created != 0 || sum.Skipped != 4 {
		t.Errorf("summary = %+v, want 0 created 4 skipped", sum)
	}

	after, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("row %d changed identity", i)
		}
	}
}

func TestGenerateConfigErrorIsolation(t *testing.T) {
	f := setup(t)
	a := f.child(t, "Ada")
	bad := f.task(t, "Broken", "weekly_rotation",
		fmt.Sprintf(`{"rotation_type": "odd_even_week", "assigned_children": [%d]}`, a))
	f.task(t, "Dishes", "daily", "")

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 3 {
		t.Errorf("created = %d, want 3 (valid task generated)", sum.Created)
	}
	if len(sum.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly 1", sum.Errors)
	}
	if sum.Errors[0].TaskID != bad.ID {
		t.Errorf("error task = %d, want %d", sum.Errors[0].TaskID, bad.ID)
	}
}

func TestGenerateUnknownRuleTypeTreatedAsDaily(t *testing.T) {
	f := setup(t)
	f.task(t, "Mystery", "fortnightly", "")

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 2 || len(sum.Errors) != 0 {
		t.Errorf("summary = %+v, want 2 created no errors", sum)
	}
}

func TestGenerateRejectsBadRange(t *testing.T) {
	f := setup(t)
	f.task(t, "Dishes", "daily", "")

	for _, days := range []int{0, -1, 31, 100} {
		if _, err := f.gen.Generate(1, day(t, "2025-06-02"), days); err != ErrInvalidRange {
			t.Errorf("Generate(days=%d) err = %v, want ErrInvalidRange", days, err)
		}
	}

	// Nothing was written.
	list, err := f.assignments.List(1, store.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("rows = %d, want 0", len(list))
	}

	if _, err := f.gen.Generate(1, time.Time{}, 7); err == nil {
		t.Error("zero start date should error")
	}
}

func TestGenerateInactiveTasksExcluded(t *testing.T) {
	f := setup(t)
	task := f.task(t, "Dishes", "daily", "")
	if err := f.tasks.SetActive(task.ID, false); err != nil {
		t.Fatalf("set inactive: %v", err)
	}

	sum, err := f.gen.Generate(1, day(t, "2025-06-02"), 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sum.Created != 0 {
		t.Errorf("created = %d, want 0 for inactive task", sum.Created)
	}
}
