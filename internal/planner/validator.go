package planner

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/dayblocks/internal/llm"
	"github.com/javiermolinar/dayblocks/internal/task"
)

// ValidationError represents a single validation error for a planned block.
type ValidationError struct {
	TaskIndex int    // Index of the block in the input slice
	Field     string // "name", "start", "end", "color" or "overlap"
	Message   string // Human-readable error message
}

// String returns a formatted error message.
func (e ValidationError) String() string {
	return fmt.Sprintf("Task %d: %s - %s", e.TaskIndex, e.Field, e.Message)
}

// ValidationResult contains the result of validating LLM-planned blocks.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// FormatErrors returns a formatted string of all validation errors for LLM feedback.
func (r ValidationResult) FormatErrors() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Your response had these errors:\n")
	for _, e := range r.Errors {
		sb.WriteString(fmt.Sprintf("- %s\n", e.String()))
	}
	sb.WriteString("\nPlease correct these issues and respond again with valid JSON.")
	return sb.String()
}

// Validator checks LLM proposals against the rules a stored block must obey.
type Validator struct {
	existing []*task.Task
}

// NewValidator creates a Validator that checks overlaps against existing.
func NewValidator(existing []*task.Task) *Validator {
	return &Validator{existing: existing}
}

// Validate checks the planned blocks. It validates:
// - a non-empty name
// - HH:MM start and end with end after start
// - an optional "#RRGGBB" color
// - no overlaps between proposed blocks
// - no overlaps with existing blocks
func (v *Validator) Validate(tasks []llm.PlannedTask) ValidationResult {
	result := ValidationResult{Valid: true}

	type indexed struct {
		index int
		task  llm.PlannedTask
	}
	valid := make([]indexed, 0, len(tasks))

	for i, t := range tasks {
		ok := true

		if strings.TrimSpace(t.Name) == "" {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i, Field: "name", Message: "name must not be empty",
			})
			ok = false
		}

		startErr := task.ValidateTime(t.Start)
		if startErr != nil {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i, Field: "start",
				Message: fmt.Sprintf("'%s' is invalid (must be HH:MM format, 00:00-23:59)", t.Start),
			})
			ok = false
		}
		endErr := task.ValidateTime(t.End)
		if endErr != nil {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i, Field: "end",
				Message: fmt.Sprintf("'%s' is invalid (must be HH:MM format, 00:00-23:59)", t.End),
			})
			ok = false
		}
		if startErr == nil && endErr == nil && t.End <= t.Start {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i, Field: "end",
				Message: fmt.Sprintf("end time '%s' must be after start time '%s' (blocks may not cross midnight)", t.End, t.Start),
			})
			ok = false
		}

		if t.Color != "" {
			if err := task.ValidateColor(t.Color); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					TaskIndex: i, Field: "color",
					Message: fmt.Sprintf("'%s' is invalid (must be #RRGGBB)", t.Color),
				})
				ok = false
			}
		}

		if ok {
			valid = append(valid, indexed{index: i, task: t})
		}
	}

	// Overlaps between proposed blocks
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i].task, valid[j].task
			if task.TimesOverlap(a.Start, a.End, b.Start, b.End) {
				result.Errors = append(result.Errors, ValidationError{
					TaskIndex: valid[j].index, Field: "overlap",
					Message: fmt.Sprintf("overlaps with proposed block '%s' (%s-%s)", a.Name, a.Start, a.End),
				})
			}
		}
	}

	// Overlaps with existing blocks
	for _, vt := range valid {
		for _, existing := range v.existing {
			if task.TimesOverlap(vt.task.Start, vt.task.End, existing.Start, existing.End) {
				result.Errors = append(result.Errors, ValidationError{
					TaskIndex: vt.index, Field: "overlap",
					Message: fmt.Sprintf("overlaps with existing block '%s' (%s-%s)", existing.Name, existing.Start, existing.End),
				})
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
