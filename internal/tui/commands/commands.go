// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/llm"
	"github.com/javiermolinar/dayblocks/internal/planner"
	"github.com/javiermolinar/dayblocks/internal/task"
)

// ResizeStep is how far +/- move the end of a block, in minutes.
const ResizeStep = 15

const maxRetries = 3

// ErrInvalidResize is returned when a resize would leave the block empty
// or push its end past midnight.
var ErrInvalidResize = errors.New("block cannot be resized that far")

// Store is the part of the schedule the TUI drives.
type Store interface {
	List(ctx context.Context) ([]*task.Task, error)
	Create(ctx context.Context, name, start, end, color string) (*task.Task, error)
	CreateMany(ctx context.Context, blocks []*task.Task) ([]*task.Task, error)
	Update(ctx context.Context, id int64, name, start, end, color string) (*task.Task, error)
	UpdateWithShift(ctx context.Context, id int64, name, start, end, color, originalEnd string) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

var (
	// newClient is replaced in tests.
	newClient = llm.NewClient

	logger = zerolog.Nop()
)

// SetLogger sets where LLM requests made by the commands are logged.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// TasksLoadedMsg is sent when the day has been (re)loaded.
type TasksLoadedMsg struct {
	Tasks []*task.Task
}

// TaskSavedMsg is sent after a block was created or changed.
type TaskSavedMsg struct {
	Task   *task.Task
	Action string // "added", "renamed", "resized"
}

// TaskDeletedMsg is sent after one block, or all of them (ID 0), were deleted.
type TaskDeletedMsg struct {
	ID int64
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// PlanResultMsg is sent when planning completes.
type PlanResultMsg struct {
	Result  *planner.PlanResult
	Planner *planner.Planner
}

// PlanSavedMsg is sent when plan is saved successfully.
type PlanSavedMsg struct {
	Count int
}

// ReviewMsg carries the AI review of the day.
type ReviewMsg struct {
	Text string
}

// LoadTasks lists the blocks of the day.
func LoadTasks(store Store) tea.Cmd {
	return func() tea.Msg {
		tasks, err := store.List(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks}
	}
}

// CreateTask adds a block.
func CreateTask(store Store, name, start, end, color string) tea.Cmd {
	return func() tea.Msg {
		t, err := task.New(name, start, end, color)
		if err != nil {
			return ErrMsg{Err: err}
		}
		created, err := store.Create(context.Background(), t.Name, t.Start, t.End, t.Color)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TaskSavedMsg{Task: created, Action: "added"}
	}
}

// RenameTask changes the name of t and keeps its times.
func RenameTask(store Store, t *task.Task, name string) tea.Cmd {
	return func() tea.Msg {
		v, err := task.New(name, t.Start, t.End, t.Color)
		if err != nil {
			return ErrMsg{Err: err}
		}
		updated, err := store.Update(context.Background(), t.ID, v.Name, t.Start, t.End, t.Color)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TaskSavedMsg{Task: updated, Action: "renamed"}
	}
}

// ResizeTask moves the end of t by delta minutes and shifts every later
// block by the same amount.
func ResizeTask(store Store, t *task.Task, delta int) tea.Cmd {
	return func() tea.Msg {
		newEnd, err := resizedEnd(t, delta)
		if err != nil {
			return ErrMsg{Err: err}
		}
		updated, err := store.UpdateWithShift(context.Background(), t.ID, t.Name, t.Start, newEnd, t.Color, t.End)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TaskSavedMsg{Task: updated, Action: "resized"}
	}
}

func resizedEnd(t *task.Task, delta int) (string, error) {
	end := task.TimeToMinutes(t.End) + delta
	if end <= task.TimeToMinutes(t.Start) || end >= task.MinutesPerDay {
		return "", fmt.Errorf("%w: %s-%s by %+dm", ErrInvalidResize, t.Start, t.End, delta)
	}
	return task.MinutesToTime(end), nil
}

// DeleteTask removes one block.
func DeleteTask(store Store, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := store.Delete(context.Background(), id); err != nil {
			return ErrMsg{Err: err}
		}
		return TaskDeletedMsg{ID: id}
	}
}

// DeleteAll removes every block.
func DeleteAll(store Store) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteAll(context.Background()); err != nil {
			return ErrMsg{Err: err}
		}
		return TaskDeletedMsg{}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// Plan creates a command that runs the LLM planning.
func Plan(input string, cfg *config.Config, store Store) tea.Cmd {
	return func() tea.Msg {
		client, err := newClient(cfg.LLM, logger)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}

		p := planner.New(client, cfg, store)

		result, err := p.PlanWithRetry(context.Background(), planner.PlanRequest{Input: input}, maxRetries)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("planning: %w", err)}
		}

		return PlanResultMsg{Result: result, Planner: p}
	}
}

// ContinuePlan asks the planner to revise its last proposal.
func ContinuePlan(p *planner.Planner, feedback string) tea.Cmd {
	return func() tea.Msg {
		if p == nil {
			return ErrMsg{Err: planner.ErrNoSession}
		}
		result, err := p.ContinuePlanning(context.Background(), feedback, maxRetries)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("replanning: %w", err)}
		}
		return PlanResultMsg{Result: result, Planner: p}
	}
}

// SavePlan creates a command to save the current plan.
func SavePlan(p *planner.Planner, result *planner.PlanResult) tea.Cmd {
	return func() tea.Msg {
		if p == nil || result == nil {
			return ErrMsg{Err: fmt.Errorf("no plan to save")}
		}
		if result.HasValidationErrors() {
			return ErrMsg{Err: fmt.Errorf("plan has unresolved validation errors")}
		}

		created, err := p.Save(context.Background(), result)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("saving plan: %w", err)}
		}

		return PlanSavedMsg{Count: len(created)}
	}
}

// Review asks the LLM to review the current day.
func Review(cfg *config.Config, store Store) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := store.List(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}

		client, err := newClient(cfg.LLM, logger)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}

		text, err := llm.NewEvaluator(client).ReviewDay(ctx, tasks)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("reviewing day: %w", err)}
		}
		return ReviewMsg{Text: text}
	}
}
