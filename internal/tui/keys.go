package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayblocks/internal/tui/commands"
	"github.com/javiermolinar/dayblocks/internal/tui/input"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeRename:
		return m.handleRenameKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModePlan:
		return m.handlePlanKeys(msg)
	case ModeReview:
		return m.handleReviewKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.tasks)-1)

	case "a":
		start, end := m.suggestedSlot()
		m.form = newTaskForm(start, end, m.config.UI.DefaultColor)
		m.setMode(ModeForm)
		return m, m.form.inputs[fieldName].Focus()

	case "e":
		sel := m.Selected()
		if sel == nil {
			return m, nil
		}
		m.rename.SetValue(sel.Name)
		m.rename.CursorEnd()
		m.setMode(ModeRename)
		return m, m.rename.Focus()

	case "+", "=":
		return m.resize(commands.ResizeStep)
	case "-", "_":
		return m.resize(-commands.ResizeStep)

	case "d":
		if sel := m.Selected(); sel != nil {
			return m, commands.DeleteTask(m.store, sel.ID)
		}
	case "D":
		if len(m.tasks) > 0 {
			m.setMode(ModeConfirm)
		}

	case "y":
		if err := copyToClipboard(dayText(m.tasks)); err != nil {
			return m, m.setError(fmt.Errorf("copying to clipboard: %w", err))
		}
		return m, m.setStatus(fmt.Sprintf("Copied %d blocks", len(m.tasks)))

	case "r":
		return m, commands.LoadTasks(m.store)

	case "/", "p":
		m.feedback = false
		m.prompt.SetValue("")
		if msg.String() == "/" {
			m.prompt.SetValue("/")
			m.prompt.CursorEnd()
		}
		m.setMode(ModePrompt)
		return m, m.prompt.Focus()
	}

	return m, nil
}

func (m Model) resize(delta int) (tea.Model, tea.Cmd) {
	sel := m.Selected()
	if sel == nil {
		return m, nil
	}
	return m, commands.ResizeTask(m.store, sel, delta)
}

// handleFormKeys handles keys while adding a block.
func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setMode(ModeNormal)
		return m, nil
	case "tab", "down":
		m.form.next()
		return m, nil
	case "shift+tab", "up":
		m.form.prev()
		return m, nil
	case "ctrl+n":
		if m.form.focus == fieldColor {
			in := &m.form.inputs[fieldColor]
			in.SetValue(m.styles.palette.NextSwatch(in.Value()))
			in.CursorEnd()
		}
		return m, nil
	case "enter":
		if m.form.focus < fieldColor && m.form.value(m.form.focus) == "" {
			m.form.next()
			return m, nil
		}
		m.setMode(ModeNormal)
		return m, commands.CreateTask(m.store,
			m.form.value(fieldName),
			m.form.value(fieldStart),
			m.form.value(fieldEnd),
			m.form.value(fieldColor),
		)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// handleRenameKeys handles keys while renaming the selected block.
func (m Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.rename.Blur()
		m.setMode(ModeNormal)
		return m, nil
	case "enter":
		m.rename.Blur()
		m.setMode(ModeNormal)
		sel := m.Selected()
		if sel == nil || m.rename.Value() == sel.Name {
			return m, nil
		}
		return m, commands.RenameTask(m.store, sel, m.rename.Value())
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the delete-all confirmation.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.setMode(ModeNormal)
	switch msg.String() {
	case "y", "Y":
		m.cursor = 0
		return m, commands.DeleteAll(m.store)
	}
	return m, m.setStatus("Nothing deleted")
}

// handlePromptKeys handles keys while the prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.Blur()
		if m.feedback {
			m.feedback = false
			m.setMode(ModePlan)
			return m, nil
		}
		m.setMode(ModeNormal)
		return m, nil

	case "tab":
		if value, ok := input.PromptAutocomplete(m.prompt.Value(), input.Commands); ok {
			m.prompt.SetValue(value)
			m.prompt.CursorEnd()
		}
		return m, nil

	case "enter":
		value := m.prompt.Value()
		m.prompt.Blur()
		m.prompt.SetValue("")

		if m.feedback {
			m.feedback = false
			if value == "" {
				m.setMode(ModePlan)
				return m, nil
			}
			m.setMode(ModeNormal)
			m.busy = "Replanning..."
			return m, commands.ContinuePlan(m.planner, value)
		}
		return m.runPrompt(value)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) runPrompt(value string) (tea.Model, tea.Cmd) {
	m.setMode(ModeNormal)

	command, arg := input.Parse(value)
	switch command {
	case "":
		return m, nil
	case "/plan":
		if arg == "" {
			return m, m.setError(fmt.Errorf("usage: /plan <description>"))
		}
		m.busy = "Planning..."
		return m, commands.Plan(arg, m.config, m.store)
	case "/review":
		m.busy = "Reviewing..."
		return m, commands.Review(m.config, m.store)
	case "/clear":
		if len(m.tasks) > 0 {
			m.setMode(ModeConfirm)
		}
		return m, nil
	}
	return m, m.setError(fmt.Errorf("unknown command %q", command))
}

// handlePlanKeys handles keys while an AI proposal is shown.
func (m Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a", "enter":
		if m.planResult != nil && m.planResult.HasValidationErrors() {
			return m, m.setError(fmt.Errorf("plan has unresolved validation errors, modify or cancel"))
		}
		return m, commands.SavePlan(m.planner, m.planResult)
	case "m":
		m.feedback = true
		m.prompt.SetValue("")
		m.setMode(ModePrompt)
		return m, m.prompt.Focus()
	case "c", "esc", "q":
		m.planner = nil
		m.planResult = nil
		m.setMode(ModeNormal)
		return m, m.setStatus("Planning cancelled")
	}
	return m, nil
}

// handleReviewKeys closes the review on any key.
func (m Model) handleReviewKeys(tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.review = ""
	m.setMode(ModeNormal)
	return m, nil
}
