package schedule

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// ErrStorage matches every failure reported by the storage collaborator.
var ErrStorage = errors.New("storage failure")

// StorageError wraps an error returned by the task storage.
// Storage errors are never retried by the Store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorage) match any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// storageErr wraps err unless it is already a StorageError or a domain error.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	return errors.Is(err, task.ErrTimeBlockOverlap) || errors.Is(err, task.ErrTaskNotFound)
}

func notFound(id int64) error {
	return fmt.Errorf("%w: #%d", task.ErrTaskNotFound, id)
}

func overlapErr(existing *task.Task) error {
	return fmt.Errorf("%w: conflicts with #%d %q (%s-%s)",
		task.ErrTimeBlockOverlap, existing.ID, existing.Name, existing.Start, existing.End)
}
