package rule

import (
	"encoding/json"
	"fmt"

	"github.com/rowanvale/chorewheel/internal/model"
)

type Kind int

const (
	Daily Kind = iota
	Repeating
	WeeklyRotation
)

var kindNames = map[Kind]string{
	Daily:          "daily",
	Repeating:      "repeating",
	WeeklyRotation: "weekly_rotation",
}

func (k Kind) String() string { return kindNames[k] }

type RotationType int

const (
	OddEvenWeek RotationType = iota
	Alternating
)

var rotationFromName = map[string]RotationType{
	"odd_even_week": OddEvenWeek,
	"alternating":   Alternating,
}

// Rule is a task's recurrence rule, parsed and validated from its stored
// rule_type and rule_config. The engine only ever sees this typed form.
type Rule struct {
	Kind       Kind
	RepeatDays map[int]bool // Repeating only; weekday ints, Sunday = 0
	Rotation   RotationType // WeeklyRotation only
	Children   []int64      // ordered; may be empty for Daily/Repeating
}

// config is the wire shape of a task's rule_config JSON blob.
type config struct {
	RepeatDays       []int   `json:"repeat_days"`
	RotationType     string  `json:"rotation_type"`
	AssignedChildren []int64 `json:"assigned_children"`
}

// Parse validates a task's rule_type and rule_config into a Rule. An
// unrecognized or empty rule_type is treated as daily. A nil or empty
// config is valid for daily tasks (assignments carry no child).
func Parse(ruleType string, raw json.RawMessage) (Rule, error) {
	var cfg config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Rule{}, fmt.Errorf("invalid rule_config: %w", err)
		}
	}

	switch ruleType {
	case model.RuleTypeRepeating:
		if len(cfg.RepeatDays) == 0 {
			return Rule{}, fmt.Errorf("repeating rule requires repeat_days")
		}
		days := make(map[int]bool, len(cfg.RepeatDays))
		for _, d := range cfg.RepeatDays {
			if d < 0 || d > 6 {
				return Rule{}, fmt.Errorf("repeat_days entry out of range: %d", d)
			}
			days[d] = true
		}
		return Rule{Kind: Repeating, RepeatDays: days, Children: cfg.AssignedChildren}, nil

	case model.RuleTypeWeeklyRotation:
		rot, ok := rotationFromName[cfg.RotationType]
		if !ok {
			if cfg.RotationType == "" {
				return Rule{}, fmt.Errorf("weekly_rotation rule requires rotation_type")
			}
			return Rule{}, fmt.Errorf("unknown rotation_type: %q", cfg.RotationType)
		}
		if len(cfg.AssignedChildren) < 2 {
			return Rule{}, fmt.Errorf("weekly_rotation rule requires at least 2 assigned_children, got %d", len(cfg.AssignedChildren))
		}
		return Rule{Kind: WeeklyRotation, Rotation: rot, Children: cfg.AssignedChildren}, nil

	default:
		// daily, plus the documented fallback for unknown rule types
		return Rule{Kind: Daily, Children: cfg.AssignedChildren}, nil
	}
}
