// Package planner turns natural language into validated day blocks.
// It coordinates the LLM, the free-slot scheduler and the schedule store.
// Both CLI and TUI can use this package.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/llm"
	"github.com/javiermolinar/dayblocks/internal/scheduler"
	"github.com/javiermolinar/dayblocks/internal/task"
)

// ErrNoSession is returned by ContinuePlanning before PlanWithRetry.
var ErrNoSession = errors.New("no active planning session")

// Store is the part of the schedule the planner reads and writes.
type Store interface {
	List(ctx context.Context) ([]*task.Task, error)
	CreateMany(ctx context.Context, blocks []*task.Task) ([]*task.Task, error)
}

// Planner orchestrates block planning using the LLM, scheduler and store.
type Planner struct {
	llmClient    llm.Client
	scheduler    *scheduler.Scheduler
	store        Store
	provider     string
	defaultColor string
	now          func() time.Time

	// Conversation state for interactive planning
	messages     []llm.Message
	existing     []*task.Task
	lastResponse *llm.PlanResponse
}

// PlanRequest contains the input for planning.
type PlanRequest struct {
	Input string // Natural language description of the blocks
}

// PlanResult contains the result of a planning operation.
type PlanResult struct {
	Tasks       []llm.PlannedTask // in logical-day order
	Warnings    []string
	Suggestions []string

	// Populated when retries are exhausted
	ValidationErrors []ValidationError

	// Context for display
	Free             []scheduler.Slot
	AvailableMinutes int
	Now              time.Time
}

// TotalTasks returns the number of proposed blocks.
func (r *PlanResult) TotalTasks() int {
	return len(r.Tasks)
}

// HasValidationErrors returns true if there are unresolved validation errors.
func (r *PlanResult) HasValidationErrors() bool {
	return len(r.ValidationErrors) > 0
}

// New creates a new Planner with the given dependencies.
func New(client llm.Client, cfg *config.Config, store Store) *Planner {
	return &Planner{
		llmClient:    client,
		scheduler:    scheduler.New(cfg.Schedule.DayStart, cfg.Schedule.DayEnd),
		store:        store,
		provider:     cfg.LLM.Provider,
		defaultColor: cfg.UI.DefaultColor,
		now:          time.Now,
	}
}

// PlanWithRetry proposes blocks for the input, validating the LLM answer and
// feeding errors back to it up to maxRetries times. When retries run out the
// result carries the remaining ValidationErrors.
func (p *Planner) PlanWithRetry(ctx context.Context, req PlanRequest, maxRetries int) (*PlanResult, error) {
	existing, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching existing tasks: %w", err)
	}
	p.existing = existing

	now := p.now()
	free := p.scheduler.FreeSlots(existing)

	llmReq := llm.PlanRequest{
		Input:            req.Input,
		Now:              now,
		DayStart:         p.scheduler.DayStart(),
		DayEnd:           p.scheduler.DayEnd(),
		Existing:         existing,
		Free:             toFreeWindows(free),
		UseCompactPrompt: llm.IsLocal(p.provider),
	}

	llmPlanner := llm.NewPlanner(p.llmClient)
	p.messages = llmPlanner.BuildInitialMessages(llmReq)
	p.messages = append(p.messages, llm.Message{Role: "user", Content: req.Input})

	return p.runValidationLoop(ctx, llmPlanner, maxRetries)
}

// ContinuePlanning adds context to the conversation and replans.
// Used when user wants to modify the proposal.
func (p *Planner) ContinuePlanning(ctx context.Context, additionalContext string, maxRetries int) (*PlanResult, error) {
	if len(p.messages) == 0 {
		return nil, ErrNoSession
	}

	if p.lastResponse != nil {
		respJSON, _ := json.Marshal(p.lastResponse)
		p.messages = append(p.messages, llm.Message{Role: "assistant", Content: string(respJSON)})
	}
	p.messages = append(p.messages, llm.Message{Role: "user", Content: additionalContext})

	return p.runValidationLoop(ctx, llm.NewPlanner(p.llmClient), maxRetries)
}

func (p *Planner) runValidationLoop(ctx context.Context, llmPlanner *llm.Planner, maxRetries int) (*PlanResult, error) {
	validator := NewValidator(p.existing)

	var lastValidation ValidationResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := llmPlanner.PlanWithMessages(ctx, p.messages)
		if err != nil {
			return nil, fmt.Errorf("LLM planning (attempt %d): %w", attempt+1, err)
		}
		p.lastResponse = resp

		lastValidation = validator.Validate(resp.Tasks)
		if lastValidation.Valid {
			return p.buildResult(resp, nil), nil
		}

		// Validation failed - append error feedback for retry
		if attempt < maxRetries {
			respJSON, _ := json.Marshal(resp)
			p.messages = append(p.messages,
				llm.Message{Role: "assistant", Content: string(respJSON)},
				llm.Message{Role: "user", Content: lastValidation.FormatErrors()},
			)
		}
	}

	return p.buildResult(p.lastResponse, lastValidation.Errors), nil
}

// Save creates the planned blocks in one atomic unit and returns them.
func (p *Planner) Save(ctx context.Context, result *PlanResult) ([]*task.Task, error) {
	if result.HasValidationErrors() {
		return nil, errors.New("cannot save: result has validation errors")
	}
	if len(result.Tasks) == 0 {
		return nil, nil
	}

	blocks := make([]*task.Task, 0, len(result.Tasks))
	for _, pt := range result.Tasks {
		color := pt.Color
		if color == "" {
			color = p.defaultColor
		}
		t, err := task.New(pt.Name, pt.Start, pt.End, color)
		if err != nil {
			return nil, fmt.Errorf("converting %q: %w", pt.Name, err)
		}
		blocks = append(blocks, t)
	}

	return p.store.CreateMany(ctx, blocks)
}

// buildResult creates a PlanResult from an LLM response.
func (p *Planner) buildResult(resp *llm.PlanResponse, validationErrors []ValidationError) *PlanResult {
	result := &PlanResult{
		Warnings:         resp.Warnings,
		Suggestions:      resp.Suggestions,
		ValidationErrors: validationErrors,
		Free:             p.scheduler.FreeSlots(p.existing),
		AvailableMinutes: p.scheduler.AvailableMinutes(p.existing),
		Now:              p.now(),
	}

	// Order by logical-day position for display
	proposed := make([]*task.Task, len(resp.Tasks))
	for i, t := range resp.Tasks {
		proposed[i] = &task.Task{ID: int64(i), Start: t.Start}
	}
	for _, t := range task.SortLogical(proposed) {
		result.Tasks = append(result.Tasks, resp.Tasks[t.ID])
	}

	if validationErrors == nil {
		result.Warnings = append(result.Warnings, p.windowWarnings(result.Tasks)...)
	}
	return result
}

// windowWarnings flags blocks outside the preferred hours. Such blocks are
// still accepted: late-night blocks belong to the same day.
func (p *Planner) windowWarnings(tasks []llm.PlannedTask) []string {
	var warnings []string
	for _, t := range tasks {
		if msg := p.scheduler.ValidateTimeSlot(t.Start, t.End); msg != "" {
			warnings = append(warnings, fmt.Sprintf("'%s' (%s-%s) is outside the preferred hours %s-%s: %s",
				t.Name, t.Start, t.End, p.scheduler.DayStart(), p.scheduler.DayEnd(), msg))
		}
	}
	return warnings
}

func toFreeWindows(slots []scheduler.Slot) []llm.FreeWindow {
	windows := make([]llm.FreeWindow, 0, len(slots))
	for _, s := range slots {
		windows = append(windows, llm.FreeWindow{Start: s.Start, End: s.End})
	}
	return windows
}
