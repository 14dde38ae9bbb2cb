// Package scheduler finds free time between the blocks of a day.
package scheduler

import (
	"slices"
	"time"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// slotStep is the granularity suggested starts are rounded to.
const slotStep = 15

// Slot is a free interval [Start, End) of the clock day.
type Slot struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Minutes returns the length of the slot.
func (s Slot) Minutes() int {
	return task.TimeToMinutes(s.End) - task.TimeToMinutes(s.Start)
}

// Scheduler looks for free time inside a working window of the day.
type Scheduler struct {
	dayStart string // "HH:MM"
	dayEnd   string // "HH:MM"
}

// New creates a Scheduler bounded by [dayStart, dayEnd).
func New(dayStart, dayEnd string) *Scheduler {
	return &Scheduler{dayStart: dayStart, dayEnd: dayEnd}
}

// DayStart returns the configured window start.
func (s *Scheduler) DayStart() string {
	return s.dayStart
}

// DayEnd returns the configured window end.
func (s *Scheduler) DayEnd() string {
	return s.dayEnd
}

// FreeSlots returns the gaps of the window not covered by any task, in order.
func (s *Scheduler) FreeSlots(tasks []*task.Task) []Slot {
	windowStart := task.TimeToMinutes(s.dayStart)
	windowEnd := task.TimeToMinutes(s.dayEnd)
	if windowStart >= windowEnd {
		return nil
	}

	sorted := slices.Clone(tasks)
	task.SortByStart(sorted)

	var slots []Slot
	cursor := windowStart
	for _, t := range sorted {
		if cursor >= windowEnd {
			break
		}
		start := task.TimeToMinutes(t.Start)
		end := task.TimeToMinutes(t.End)
		if end <= start {
			continue
		}
		if start > cursor {
			slots = append(slots, slot(cursor, min(start, windowEnd)))
		}
		cursor = max(cursor, end)
	}
	if cursor < windowEnd {
		slots = append(slots, slot(cursor, windowEnd))
	}
	return slots
}

// AvailableMinutes returns the free minutes left in the window.
func (s *Scheduler) AvailableMinutes(tasks []*task.Task) int {
	total := 0
	for _, free := range s.FreeSlots(tasks) {
		total += free.Minutes()
	}
	return total
}

// NextFree returns the first free slot of the given duration starting at or
// after the given time. Starts are rounded up to the next quarter hour.
func (s *Scheduler) NextFree(tasks []*task.Task, after string, duration int) (Slot, bool) {
	if duration <= 0 {
		return Slot{}, false
	}
	afterMin := task.TimeToMinutes(after)

	for _, free := range s.FreeSlots(tasks) {
		start := roundUp(max(task.TimeToMinutes(free.Start), afterMin))
		if start+duration <= task.TimeToMinutes(free.End) {
			return slot(start, start+duration), true
		}
	}
	return Slot{}, false
}

// ValidateTimeSlot checks that [start, end) lies inside the window.
// Returns an error message if invalid, empty string if valid.
func (s *Scheduler) ValidateTimeSlot(start, end string) string {
	startMin := task.TimeToMinutes(start)
	endMin := task.TimeToMinutes(end)

	if startMin >= endMin {
		return "start time must be before end time"
	}
	if startMin < task.TimeToMinutes(s.dayStart) {
		return "start time is before day start"
	}
	if endMin > task.TimeToMinutes(s.dayEnd) {
		return "end time is after day end"
	}
	return ""
}

// NextAvailableStart returns now rounded up to the next quarter hour as "HH:MM".
func NextAvailableStart(now time.Time) string {
	return roundUpTo15Min(now).Format("15:04")
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
func roundUpTo15Min(t time.Time) time.Time {
	minute := t.Minute()
	remainder := minute % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Add(time.Duration(15-remainder) * time.Minute).Truncate(time.Minute)
}

func roundUp(minutes int) int {
	if r := minutes % slotStep; r != 0 {
		return minutes + slotStep - r
	}
	return minutes
}

func slot(start, end int) Slot {
	return Slot{Start: task.MinutesToTime(start), End: task.MinutesToTime(end)}
}
