// Package task defines the core domain types for dayblocks.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrInvalidColor      = errors.New("color must be in #RRGGBB format")
)

// Domain errors.
var (
	ErrTimeBlockOverlap = errors.New("time block overlaps with existing task")
	ErrTaskNotFound     = errors.New("task not found")
)

// DefaultColor is used when a task is created without a color.
const DefaultColor = "#89b4fa"

// Task represents a scheduled block of the day.
type Task struct {
	ID    int64  `json:"task_id" yaml:"-"`
	Name  string `json:"task_name" yaml:"name"`
	Start string `json:"task_time_start" yaml:"start"` // "HH:MM" format
	End   string `json:"task_time_end" yaml:"end"`     // "HH:MM" format
	Color string `json:"task_color" yaml:"color"`      // "#RRGGBB" format
}

// New creates a new Task with validation.
// start and end must be in HH:MM format, with end after start.
// An empty color falls back to DefaultColor.
func New(name, start, end, color string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if err := ValidateTime(start); err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	if err := ValidateTime(end); err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}

	// Intervals crossing midnight are not supported.
	if end <= start {
		return nil, ErrEndBeforeStart
	}

	if color == "" {
		color = DefaultColor
	}
	if err := ValidateColor(color); err != nil {
		return nil, err
	}

	return &Task{
		Name:  name,
		Start: start,
		End:   end,
		Color: strings.ToLower(color),
	}, nil
}

// ValidateTime checks that s is a zero-padded 24-hour "HH:MM" value.
func ValidateTime(s string) error {
	if len(s) != 5 {
		return ErrInvalidTimeFormat
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTimeFormat
	}
	return nil
}

// ValidateColor checks that s is a 7-character "#RRGGBB" color code.
func ValidateColor(s string) error {
	if len(s) != 7 || s[0] != '#' {
		return ErrInvalidColor
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return ErrInvalidColor
		}
	}
	return nil
}

// Duration returns the task duration in minutes.
func (t *Task) Duration() int {
	return TimeToMinutes(t.End) - TimeToMinutes(t.Start)
}

// OverlapsWith returns true if this task overlaps with another task.
func (t *Task) OverlapsWith(other *Task) bool {
	if other == nil {
		return false
	}
	return TimesOverlap(t.Start, t.End, other.Start, other.End)
}

// String formats the task as "#id HH:MM-HH:MM name".
func (t *Task) String() string {
	return fmt.Sprintf("#%d %s-%s %s", t.ID, t.Start, t.End, t.Name)
}
