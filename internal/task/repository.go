package task

import "context"

// TimeUpdate represents a task time change produced by a cascading shift.
type TimeUpdate struct {
	ID       int64  `json:"task_id"`
	NewStart string `json:"new_start"`
	NewEnd   string `json:"new_end"`
}

// Storage defines the persistence contract for tasks.
// Implementations do not enforce the no-overlap invariant; that is the job
// of the schedule package.
type Storage interface {
	// List returns all tasks ordered by start time ascending.
	List(ctx context.Context) ([]*Task, error)

	// Get retrieves a task by ID. Returns nil, nil if it does not exist.
	Get(ctx context.Context, id int64) (*Task, error)

	// Insert adds a new task and returns its storage-assigned ID.
	Insert(ctx context.Context, name, start, end, color string) (int64, error)

	// Update overwrites every mutable field of the task with t.ID.
	// Returns false if no task matched.
	Update(ctx context.Context, t *Task) (bool, error)

	// Delete removes a task. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every task.
	DeleteAll(ctx context.Context) error

	// RunAtomically executes fn against a transactional view of the storage.
	// Either every write made through tx is applied, or none is.
	RunAtomically(ctx context.Context, fn func(tx Storage) error) error

	// Close releases any resources held by the storage.
	Close() error
}
