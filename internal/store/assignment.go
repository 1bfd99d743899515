package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanvale/chorewheel/internal/model"
)

// dateLayout is how assignment dates are stored; date-only, no time zone.
const dateLayout = "2006-01-02"

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var date string
	var childID sql.NullInt64
	var completedAt sql.NullTime

	err := scanner.Scan(&a.ID, &a.TaskID, &date, &childID, &a.Status, &completedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse assignment date %q: %w", date, err)
	}
	if childID.Valid {
		a.ChildID = &childID.Int64
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

const assignmentCols = `id, task_id, date, child_id, status, completed_at, created_at`
const assignmentColsPrefixed = `a.id, a.task_id, a.date, a.child_id, a.status, a.completed_at, a.created_at`

// InsertIfAbsent inserts a pending assignment unless one already exists
// for (taskID, date). The uniqueness constraint is the only concurrency
// control generation needs: a losing writer sees created=false.
func (s *AssignmentStore) InsertIfAbsent(taskID int64, date time.Time, childID *int64) (bool, error) {
	var cID sql.NullInt64
	if childID != nil {
		cID = sql.NullInt64{Int64: *childID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO assignments (task_id, date, child_id) VALUES (?, ?, ?)
		 ON CONFLICT (task_id, date) DO NOTHING`,
		taskID, date.Format(dateLayout), cID,
	)
	if err != nil {
		return false, fmt.Errorf("insert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// MostRecentAssignedChild returns the child of the latest assignment with
// a non-null child for the task strictly before the given date, or nil
// when no such assignment exists. Scoped per task id.
func (s *AssignmentStore) MostRecentAssignedChild(taskID int64, before time.Time) (*int64, error) {
	var childID int64
	err := s.db.QueryRow(
		`SELECT child_id FROM assignments
		 WHERE task_id = ? AND date < ? AND child_id IS NOT NULL
		 ORDER BY date DESC LIMIT 1`,
		taskID, before.Format(dateLayout),
	).Scan(&childID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent assigned child: %w", err)
	}
	return &childID, nil
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// GetOwned returns the assignment only when its task belongs to the given
// household, so handlers cannot act on another household's rows.
func (s *AssignmentStore) GetOwned(id, householdID int64) (*model.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT `+assignmentColsPrefixed+`
		 FROM assignments a
		 JOIN tasks t ON t.id = a.task_id
		 WHERE a.id = ? AND t.household_id = ?`,
		id, householdID,
	)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get owned assignment: %w", err)
	}
	return a, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	From    time.Time
	To      time.Time
	ChildID *int64
	Status  model.AssignmentStatus
}

// List returns a household's assignments ordered by date, then child name
// (unassigned rows last). A pure projection over the store; no generation
// logic.
func (s *AssignmentStore) List(householdID int64, f ListFilter) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentColsPrefixed + `
		FROM assignments a
		JOIN tasks t ON t.id = a.task_id
		LEFT JOIN children c ON c.id = a.child_id
		WHERE t.household_id = ?`
	args := []any{householdID}

	if !f.From.IsZero() {
		query += ` AND a.date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += ` AND a.date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	if f.ChildID != nil {
		query += ` AND a.child_id = ?`
		args = append(args, *f.ChildID)
	}
	if f.Status != "" {
		query += ` AND a.status = ?`
		args = append(args, string(f.Status))
	}

	query += ` ORDER BY a.date ASC, c.name IS NULL, c.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Complete marks a pending assignment completed. Generation never touches
// status; this is the only transition.
func (s *AssignmentStore) Complete(id int64) (*model.Assignment, error) {
	_, err := s.db.Exec(
		`UPDATE assignments SET status = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		string(model.AssignmentCompleted), id, string(model.AssignmentPending),
	)
	if err != nil {
		return nil, fmt.Errorf("complete assignment: %w", err)
	}
	return s.GetByID(id)
}

// UndoComplete reverts a completed assignment to pending.
func (s *AssignmentStore) UndoComplete(id int64) (*model.Assignment, error) {
	_, err := s.db.Exec(
		`UPDATE assignments SET status = ?, completed_at = NULL WHERE id = ?`,
		string(model.AssignmentPending), id,
	)
	if err != nil {
		return nil, fmt.Errorf("undo complete: %w", err)
	}
	return s.GetByID(id)
}
