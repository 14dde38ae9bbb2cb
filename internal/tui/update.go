package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayblocks/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.TasksLoadedMsg:
		m.setTasks(msg.Tasks)
		LogEvent("tasks_loaded", map[string]any{"count": len(m.tasks)})
		return m, nil

	case commands.TaskSavedMsg:
		m.selectID = msg.Task.ID
		status := m.setStatus(fmt.Sprintf("Block #%d %s", msg.Task.ID, msg.Action))
		return m, tea.Batch(status, commands.LoadTasks(m.store))

	case commands.TaskDeletedMsg:
		text := "All blocks deleted"
		if msg.ID != 0 {
			text = fmt.Sprintf("Block #%d deleted", msg.ID)
		}
		status := m.setStatus(text)
		return m, tea.Batch(status, commands.LoadTasks(m.store))

	case commands.PlanResultMsg:
		m.busy = ""
		m.planner = msg.Planner
		m.planResult = msg.Result
		m.setMode(ModePlan)
		return m, nil

	case commands.PlanSavedMsg:
		m.planner = nil
		m.planResult = nil
		m.setMode(ModeNormal)
		status := m.setStatus(fmt.Sprintf("%d blocks saved", msg.Count))
		return m, tea.Batch(status, commands.LoadTasks(m.store))

	case commands.ReviewMsg:
		m.busy = ""
		m.review = msg.Text
		m.setMode(ModeReview)
		return m, nil

	case commands.ErrMsg:
		m.busy = ""
		LogEvent("error", map[string]any{"error": msg.Err.Error()})
		return m, m.setError(msg.Err)

	case commands.StatusMsgCmd:
		return m, m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}
