package schedule

import (
	"context"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// PlanShift computes how a change of the task id's end time from originalEnd
// moves the rest of the schedule: every other task that logically starts at
// or after originalEnd moves by delta minutes, wrapping around midnight.
// Tasks are not modified.
func PlanShift(tasks []*task.Task, id int64, originalEnd string, delta int) []task.TimeUpdate {
	if delta == 0 {
		return nil
	}

	var updates []task.TimeUpdate
	for _, t := range tasks {
		if t.ID == id || !task.StartsAtOrAfter(t, originalEnd) {
			continue
		}
		updates = append(updates, task.TimeUpdate{
			ID:       t.ID,
			NewStart: task.AddMinutes(t.Start, delta),
			NewEnd:   task.AddMinutes(t.End, delta),
		})
	}
	return updates
}

// PreviewShift returns the signed delta and the time updates UpdateWithShift
// would apply, without writing anything. An empty originalEnd means the
// stored end of the task.
func (s *Store) PreviewShift(ctx context.Context, id int64, end, originalEnd string) (int, []task.TimeUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.storage.List(ctx)
	if err != nil {
		return 0, nil, s.fail("preview_shift", storageErr("listing tasks", err))
	}
	current := findTask(tasks, id)
	if current == nil {
		return 0, nil, s.fail("preview_shift", notFound(id))
	}
	if originalEnd == "" {
		originalEnd = current.End
	}

	delta := task.ShiftDelta(originalEnd, end)
	return delta, PlanShift(tasks, id, originalEnd, delta), nil
}

// UpdateWithShift updates the task with the given ID and moves every task
// that starts at or after its original end by the same amount the end moved.
// An empty originalEnd means the end stored when the update runs.
//
// When the end did not move this is a plain update, overlap check included.
// Otherwise the shifted tasks and the edited task are written in one atomic
// unit and the edited task is written without an overlap check. The returned
// task echoes the input.
func (s *Store) UpdateWithShift(ctx context.Context, id int64, name, start, end, color, originalEnd string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edited := &task.Task{ID: id, Name: name, Start: start, End: end, Color: color}
	var delta, shifted int

	err := s.storage.RunAtomically(ctx, func(tx task.Storage) error {
		tasks, err := tx.List(ctx)
		if err != nil {
			return storageErr("listing tasks", err)
		}
		current := findTask(tasks, id)
		if current == nil {
			return notFound(id)
		}
		if originalEnd == "" {
			originalEnd = current.End
		}

		delta = task.ShiftDelta(originalEnd, end)
		if delta == 0 {
			if conflict := firstConflict(tasks, edited, &id); conflict != nil {
				return overlapErr(conflict)
			}
		}

		for _, u := range PlanShift(tasks, id, originalEnd, delta) {
			moved := *findTask(tasks, u.ID)
			moved.Start = u.NewStart
			moved.End = u.NewEnd
			if _, err := tx.Update(ctx, &moved); err != nil {
				return storageErr("shifting task", err)
			}
			shifted++
		}

		ok, err := tx.Update(ctx, edited)
		if err != nil {
			return storageErr("updating task", err)
		}
		if !ok {
			return notFound(id)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("update_with_shift", storageErr("shifting schedule", err))
	}

	s.log.Info().Str("op", "update_with_shift").Int64("task_id", id).
		Int("delta", delta).Int("shifted", shifted).Msg("schedule shifted")
	return edited, nil
}

func findTask(tasks []*task.Task, id int64) *task.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
