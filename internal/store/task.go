package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rowanvale/chorewheel/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var ruleConfig string

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description,
		&t.RuleType, &ruleConfig, &t.Active, &t.SortOrder,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.RuleConfig = json.RawMessage(ruleConfig)
	return &t, nil
}

const taskCols = `id, household_id, title, description, rule_type, rule_config, active, sort_order, created_at, updated_at`

func (s *TaskStore) Create(householdID int64, title, description, ruleType string, ruleConfig json.RawMessage, sortOrder int) (*model.Task, error) {
	if len(ruleConfig) == 0 {
		ruleConfig = json.RawMessage(`{}`)
	}
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, rule_type, rule_config, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, title, description, ruleType, string(ruleConfig), sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY sort_order ASC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListActive returns the household's active task templates, the input set
// for a generation run.
func (s *TaskStore) ListActive(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? AND active = 1 ORDER BY sort_order ASC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, title, description, ruleType string, ruleConfig json.RawMessage, active bool, sortOrder int) (*model.Task, error) {
	if len(ruleConfig) == 0 {
		ruleConfig = json.RawMessage(`{}`)
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, rule_type = ?, rule_config = ?, active = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, ruleType, string(ruleConfig), active, sortOrder, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) SetActive(id int64, active bool) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("set task active: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
