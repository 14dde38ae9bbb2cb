package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayblocks/internal/scheduler"
	"github.com/javiermolinar/dayblocks/internal/task"
)

const (
	fieldName = iota
	fieldStart
	fieldEnd
	fieldColor
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Start", "End", "Color"}

// defaultBlockMinutes is the length of the slot the add form suggests.
const defaultBlockMinutes = 60

// taskForm collects the fields of a new block.
type taskForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newTaskForm(start, end, color string) taskForm {
	var f taskForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 5
		f.inputs[i] = in
	}
	f.inputs[fieldName].CharLimit = 80
	f.inputs[fieldName].Placeholder = "What are you doing?"
	f.inputs[fieldStart].Placeholder = "HH:MM"
	f.inputs[fieldEnd].Placeholder = "HH:MM"
	f.inputs[fieldColor].CharLimit = 7
	f.inputs[fieldColor].Placeholder = task.DefaultColor

	f.inputs[fieldStart].SetValue(start)
	f.inputs[fieldEnd].SetValue(end)
	f.inputs[fieldColor].SetValue(color)
	f.inputs[fieldName].Focus()
	return f
}

// suggestedSlot returns the first free slot of defaultBlockMinutes after
// now inside the configured window.
func (m Model) suggestedSlot() (string, string) {
	s := scheduler.New(m.config.Schedule.DayStart, m.config.Schedule.DayEnd)
	slot, ok := s.NextFree(m.tasks, scheduler.NextAvailableStart(m.now()), defaultBlockMinutes)
	if !ok {
		return "", ""
	}
	return slot.Start, slot.End
}

func (f *taskForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *taskForm) next() { f.setFocus(f.focus + 1) }
func (f *taskForm) prev() { f.setFocus(f.focus - 1) }

func (f taskForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}
