package model

import (
	"encoding/json"
	"time"
)

// Rule type values stored on a task. Anything else is treated as daily.
const (
	RuleTypeDaily          = "daily"
	RuleTypeRepeating      = "repeating"
	RuleTypeWeeklyRotation = "weekly_rotation"
)

type Task struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	RuleType    string          `json:"rule_type"`
	RuleConfig  json.RawMessage `json:"rule_config"`
	Active      bool            `json:"active"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
