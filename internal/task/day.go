package task

import (
	"fmt"
	"slices"
)

// DayStartCutoff is the minute offset (06:00) at which the logical day starts.
// Times before it belong to the tail of the previous logical day.
const DayStartCutoff = 6 * 60

// maxShift bounds a shift delta to half a day in either direction.
const maxShift = MinutesPerDay / 2

// AbsoluteMinutes maps a minute offset onto the logical day: values before
// DayStartCutoff are moved past the end of the day (330 becomes 1770).
func AbsoluteMinutes(m int) int {
	if m < DayStartCutoff {
		return m + MinutesPerDay
	}
	return m
}

// AbsoluteStart returns the logical-day position of an "HH:MM" time.
func AbsoluteStart(t string) int {
	return AbsoluteMinutes(TimeToMinutes(t))
}

// ShiftDelta returns the signed number of minutes an end time moved from
// originalEnd to newEnd, normalized into [-720, 720]. A move from 23:50 to
// 00:10 is +20, not -1420.
func ShiftDelta(originalEnd, newEnd string) int {
	diff := TimeToMinutes(newEnd) - TimeToMinutes(originalEnd)
	switch {
	case diff > maxShift:
		return diff - MinutesPerDay
	case diff < -maxShift:
		return diff + MinutesPerDay
	default:
		return diff
	}
}

// StartsAtOrAfter reports whether t logically starts at or after refEnd.
func StartsAtOrAfter(t *Task, refEnd string) bool {
	return AbsoluteStart(t.Start) >= AbsoluteStart(refEnd)
}

// Day holds all tasks of the schedule.
type Day struct {
	tasks []*Task // sorted by Start
}

// NewDay creates an empty Day.
func NewDay() *Day {
	return &Day{tasks: make([]*Task, 0)}
}

// NewDayWithTasks creates a Day from a slice of tasks.
// Returns error if tasks overlap.
func NewDayWithTasks(tasks []*Task) (*Day, error) {
	d := NewDay()
	for _, t := range tasks {
		if err := d.AddTask(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []*Task {
	result := make([]*Task, len(d.tasks))
	copy(result, d.tasks)
	return result
}

// AddTask adds a task to the day, maintaining sorted order by start time.
// Returns ErrTimeBlockOverlap if the task overlaps with an existing task.
func (d *Day) AddTask(t *Task) error {
	if t == nil {
		return nil
	}

	if overlap := d.FindOverlappingTask(t.Start, t.End); overlap != nil {
		return fmt.Errorf("%w: %q (%s-%s) conflicts with %q (%s-%s)",
			ErrTimeBlockOverlap,
			t.Name, t.Start, t.End,
			overlap.Name, overlap.Start, overlap.End,
		)
	}

	d.tasks = append(d.tasks, t)
	SortByStart(d.tasks)
	return nil
}

// FindOverlappingTask returns the first task that overlaps with the given time slot.
// Returns nil if no overlap is found.
func (d *Day) FindOverlappingTask(start, end string) *Task {
	for _, t := range d.tasks {
		if TimesOverlap(start, end, t.Start, t.End) {
			return t
		}
	}
	return nil
}

// DayStats holds statistics for a day.
type DayStats struct {
	Blocks      int
	BusyMinutes int
	FirstStart  string // empty when the day has no tasks
	LastEnd     string
}

// FreeMinutes returns the minutes of the 24-hour clock not covered by a task.
func (s DayStats) FreeMinutes() int {
	return MinutesPerDay - s.BusyMinutes
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	return StatsOf(d.tasks)
}

// StatsOf calculates statistics for tasks that need not form a valid Day.
func StatsOf(tasks []*Task) DayStats {
	var stats DayStats
	for _, t := range tasks {
		stats.Blocks++
		stats.BusyMinutes += max(t.Duration(), 0)
		if stats.FirstStart == "" || t.Start < stats.FirstStart {
			stats.FirstStart = t.Start
		}
		if t.End > stats.LastEnd {
			stats.LastEnd = t.End
		}
	}
	return stats
}

// SortByStart sorts tasks by start time, breaking ties by ID.
func SortByStart(tasks []*Task) {
	slices.SortFunc(tasks, func(a, b *Task) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// SortLogical returns a copy of tasks ordered by their position in the
// logical day, so 01:00 comes after 23:00.
func SortLogical(tasks []*Task) []*Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b *Task) int {
		if d := AbsoluteStart(a.Start) - AbsoluteStart(b.Start); d != 0 {
			return d
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return sorted
}
