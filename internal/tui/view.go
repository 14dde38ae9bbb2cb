package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/dayblocks/internal/planner"
	"github.com/javiermolinar/dayblocks/internal/task"
	"github.com/javiermolinar/dayblocks/internal/tui/input"
)

const (
	timeColWidth = 13 // "+23:30-00:15 "
	minBarWidth  = 12
)

// span returns the logical-day interval of t. Blocks that wrap past
// midnight end after MinutesPerDay.
func span(t *task.Task) (start, end int) {
	start = task.AbsoluteStart(t.Start)
	d := t.Duration()
	if d <= 0 {
		d += task.MinutesPerDay
	}
	return start, start + d
}

func (m Model) nowMinutes() int {
	now := m.now()
	return task.AbsoluteMinutes(now.Hour()*60 + now.Minute())
}

// View renders the model.
func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	body := m.renderTimeline(max(1, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := m.styles.TitleStyle.Render("dayblocks")
	date := m.styles.HeaderStyle.Render(m.now().Format("Monday, January 2"))

	stats := task.StatsOf(m.tasks)
	line := fmt.Sprintf("Busy: %s | Free: %s | %d blocks",
		formatDuration(stats.BusyMinutes), formatDuration(stats.FreeMinutes()), stats.Blocks)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", date, "  ", m.styles.StatsStyle.Render(line)) + "\n"
}

// timelineLines renders one line per block, with gap lines between blocks.
// It returns the lines and the index of the line holding the cursor.
func (m Model) timelineLines() ([]string, int) {
	if !m.loaded {
		return []string{m.styles.GapStyle.Render("  Loading...")}, 0
	}
	if len(m.tasks) == 0 {
		return []string{m.styles.GapStyle.Render("  No blocks yet. Press a to add one or / to plan.")}, 0
	}

	barWidth := max(minBarWidth, m.width-timeColWidth-4)
	now := m.nowMinutes()

	var (
		lines      []string
		cursorLine int
		prevEnd    = -1
		prevColor  string
		alt        bool
	)
	for i, t := range m.tasks {
		start, end := span(t)
		if prevEnd >= 0 && start > prevEnd {
			lines = append(lines, m.styles.GapStyle.Render(
				fmt.Sprintf("%*s free %s", timeColWidth, "", formatDuration(start-prevEnd))))
			alt = false
		} else {
			alt = !alt && prevColor == t.Color
		}

		selected := i == m.cursor
		if selected {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderBlock(t, barWidth, now, start, end, selected, alt))
		prevEnd, prevColor = end, t.Color
	}
	return lines, cursorLine
}

func (m Model) renderBlock(t *task.Task, barWidth, now, start, end int, selected, alt bool) string {
	marker := "  "
	switch {
	case selected:
		marker = m.styles.CursorStyle.Render("▸ ")
	case now >= start && now < end:
		marker = m.styles.NowStyle.Render("● ")
	}

	tail := " "
	if start >= task.MinutesPerDay {
		tail = "+"
	}
	timeStyle := m.styles.TimeStyle
	if selected {
		timeStyle = m.styles.TimeCursorStyle
	}
	times := timeStyle.Render(fmt.Sprintf("%s%s-%s ", tail, t.Start, t.End))

	label := fmt.Sprintf("#%d %s  %s", t.ID, t.Name, formatDuration(end-start))
	if selected && m.mode == ModeRename {
		label = m.rename.View()
	}
	label = ansi.Truncate(label, barWidth-2, "…")

	past := end <= now
	bar := m.styles.Block(t.Color, past, alt, selected).Width(barWidth).Render(label)
	return marker + times + bar
}

func (m Model) renderTimeline(height int) string {
	lines, cursorLine := m.timelineLines()

	// Keep the cursor on screen, pinned to the last row when scrolled.
	offset := max(0, cursorLine-height+1)

	end := min(len(lines), offset+height)
	visible := lines[offset:end]
	for len(visible) < height {
		visible = append(visible, "")
	}
	return strings.Join(visible, "\n")
}

func (m Model) renderFooter() string {
	var b strings.Builder

	switch m.mode {
	case ModeForm:
		b.WriteString(m.renderForm())
	case ModeConfirm:
		b.WriteString(m.styles.WarningStyle.Render(
			fmt.Sprintf("Delete all %d blocks? [y/N]", len(m.tasks))))
	case ModePrompt:
		b.WriteString(m.renderPrompt())
	case ModePlan:
		b.WriteString(m.renderPlan())
	case ModeReview:
		b.WriteString(m.styles.ModalStyle.Width(max(20, m.width-4)).Render(
			m.styles.ModalTitleStyle.Render("Review") + "\n" + m.review))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	switch {
	case m.busy != "":
		b.WriteString(m.styles.StatusStyle.Render(m.busy))
	case m.status != "" && m.statusErr:
		b.WriteString(m.styles.ErrorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(m.styles.StatusStyle.Render(m.status))
	default:
		b.WriteString(m.renderHelp())
	}
	return "\n" + b.String()
}

func (m Model) renderHelp() string {
	var keys []string
	switch m.mode {
	case ModeForm:
		keys = []string{"tab", "next field", "ctrl+n", "next color", "enter", "save", "esc", "cancel"}
	case ModeRename:
		keys = []string{"enter", "save", "esc", "cancel"}
	case ModePrompt:
		keys = []string{"tab", "complete", "enter", "run", "esc", "cancel"}
	case ModePlan:
		keys = []string{"a", "accept", "m", "modify", "c", "cancel"}
	case ModeReview:
		keys = []string{"any key", "close"}
	default:
		keys = []string{"a", "add", "e", "rename", "+/-", "resize", "d", "delete", "D", "delete all", "y", "copy", "/", "plan", "q", "quit"}
	}

	parts := make([]string, 0, len(keys)/2)
	for i := 0; i+1 < len(keys); i += 2 {
		parts = append(parts, m.styles.KeyStyle.Render(keys[i])+" "+m.styles.FooterStyle.Render(keys[i+1]))
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.width, "…")
}

func (m Model) renderForm() string {
	rows := make([]string, 0, fieldCount+1)
	rows = append(rows, m.styles.ModalTitleStyle.Render("New block"))
	for i, in := range m.form.inputs {
		rows = append(rows, m.styles.LabelStyle.Render(fieldLabels[i])+in.View())
	}
	return m.styles.ModalStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderPrompt() string {
	var b strings.Builder
	if m.feedback {
		b.WriteString(m.styles.ModalTitleStyle.Render("What would you like to change?"))
		b.WriteString("\n")
	}
	b.WriteString(m.prompt.View())
	for _, c := range input.PromptMatchingCommands(m.prompt.Value(), input.Commands) {
		b.WriteString("\n  ")
		b.WriteString(m.styles.KeyStyle.Render(c.Name))
		b.WriteString(" ")
		b.WriteString(m.styles.FooterStyle.Render(c.Description))
	}
	return b.String()
}

func (m Model) renderPlan() string {
	r := m.planResult
	if r == nil {
		return ""
	}
	return m.styles.ModalStyle.Width(max(20, m.width-4)).Render(planText(r, m.styles))
}

func planText(r *planner.PlanResult, s Styles) string {
	var b strings.Builder
	b.WriteString(s.ModalTitleStyle.Render(fmt.Sprintf("Proposed blocks (%s free in window)", formatDuration(r.AvailableMinutes))))

	if r.TotalTasks() == 0 {
		b.WriteString("\nNo blocks proposed.")
	}
	for _, t := range r.Tasks {
		swatch := s.Block(t.Color, false, false, false).Render(" ")
		fmt.Fprintf(&b, "\n%s %s-%s  %s", swatch, t.Start, t.End, t.Name)
	}
	for _, w := range r.Warnings {
		b.WriteString("\n" + s.WarningStyle.Render("! "+w))
	}
	for _, sg := range r.Suggestions {
		b.WriteString("\n* " + sg)
	}
	for _, ve := range r.ValidationErrors {
		b.WriteString("\n" + s.WarningStyle.Render("x "+ve.Message))
	}
	return b.String()
}

// dayText renders the day as plain text, one block per line.
func dayText(tasks []*task.Task) string {
	var b strings.Builder
	for _, t := range task.SortLogical(tasks) {
		fmt.Fprintf(&b, "%s-%s  %s\n", t.Start, t.End, t.Name)
	}
	return b.String()
}

// formatDuration renders minutes as "1h30m", "2h" or "45m".
func formatDuration(minutes int) string {
	if minutes < 0 {
		return "-" + formatDuration(-minutes)
	}
	h, mm := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mm)
	case mm == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, mm)
	}
}
