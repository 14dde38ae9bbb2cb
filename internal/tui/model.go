// Package tui provides the terminal user interface for dayblocks.
package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/planner"
	"github.com/javiermolinar/dayblocks/internal/task"
	"github.com/javiermolinar/dayblocks/internal/tui/commands"
	"github.com/javiermolinar/dayblocks/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeForm         // adding a block
	ModeRename       // renaming the selected block
	ModeConfirm      // confirming delete all
	ModePrompt       // typing a slash command
	ModePlan         // reviewing an AI proposal
	ModeReview       // reading the AI review
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeForm:
		return "form"
	case ModeRename:
		return "rename"
	case ModeConfirm:
		return "confirm"
	case ModePrompt:
		return "prompt"
	case ModePlan:
		return "plan"
	case ModeReview:
		return "review"
	}
	return "unknown"
}

const statusTimeout = 3 * time.Second

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// Model is the Bubble Tea model of the day view.
type Model struct {
	store  commands.Store
	config *config.Config
	styles Styles
	now    func() time.Time

	tasks    []*task.Task // logical-day order
	cursor   int
	selectID int64 // task to select after the next reload

	mode     Mode
	form     taskForm
	rename   textinput.Model
	prompt   textinput.Model
	feedback bool // prompt is collecting plan feedback

	planner    *planner.Planner
	planResult *planner.PlanResult
	review     string
	busy       string // what the LLM is doing, empty when idle

	status    string
	statusErr bool
	loaded    bool

	width  int
	height int
}

// New creates a Model over store.
func New(store commands.Store, cfg *config.Config, palette *theme.Palette) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if palette == nil {
		palette = theme.NewPalette(nil)
	}

	rename := textinput.New()
	rename.CharLimit = 80
	rename.Prompt = ""

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.Placeholder = "/plan two hours of writing, gym after 6pm"
	prompt.CharLimit = 500

	return Model{
		store:  store,
		config: cfg,
		styles: NewStyles(palette),
		now:    time.Now,
		rename: rename,
		prompt: prompt,
		width:  80,
		height: 24,
	}
}

// Init loads the day.
func (m Model) Init() tea.Cmd {
	return commands.LoadTasks(m.store)
}

// Selected returns the task under the cursor, or nil on an empty day.
func (m Model) Selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

// Mode returns the current interaction mode.
func (m Model) Mode() Mode {
	return m.mode
}

func (m *Model) setMode(mode Mode) {
	LogModeChange(m.mode, mode)
	m.mode = mode
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.status = msg
	m.statusErr = false
	return commands.ClearStatusAfter(statusTimeout)
}

func (m *Model) setError(err error) tea.Cmd {
	m.status = err.Error()
	m.statusErr = true
	return commands.ClearStatusAfter(statusTimeout)
}

// setTasks replaces the day, keeping the cursor on selectID when set.
func (m *Model) setTasks(tasks []*task.Task) {
	m.tasks = task.SortLogical(tasks)
	m.loaded = true

	if m.selectID != 0 {
		for i, t := range m.tasks {
			if t.ID == m.selectID {
				m.cursor = i
				break
			}
		}
		m.selectID = 0
	}
	m.cursor = max(0, min(m.cursor, len(m.tasks)-1))
}

// Run starts the TUI.
func Run(store commands.Store, cfg *config.Config) error {
	return RunWithDebug(store, cfg, false)
}

// RunWithDebug starts the TUI with optional debug logging.
func RunWithDebug(store commands.Store, cfg *config.Config, debug bool) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		LogEvent("theme fallback", map[string]any{"theme": cfg.UI.Theme, "error": err.Error()})
		if t, err = theme.Load(theme.DefaultName); err != nil {
			return err
		}
	}

	model := New(store, cfg, theme.NewPalette(t))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
