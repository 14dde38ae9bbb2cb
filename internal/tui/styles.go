package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/dayblocks/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	StatsStyle  lipgloss.Style

	TimeStyle       lipgloss.Style
	TimeCursorStyle lipgloss.Style
	CursorStyle     lipgloss.Style
	NowStyle        lipgloss.Style
	GapStyle        lipgloss.Style

	FooterStyle lipgloss.Style
	KeyStyle    lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	LabelStyle      lipgloss.Style
	WarningStyle    lipgloss.Style
}

// NewStyles creates the styles for palette.
func NewStyles(p *theme.Palette) Styles {
	return Styles{
		palette: p,

		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnAccent).
			Background(p.Accent).
			Padding(0, 1),
		HeaderStyle: lipgloss.NewStyle().Foreground(p.Fg).Bold(true),
		StatsStyle:  lipgloss.NewStyle().Foreground(p.FgMuted),

		TimeStyle:       lipgloss.NewStyle().Foreground(p.FgMuted),
		TimeCursorStyle: lipgloss.NewStyle().Foreground(p.Fg).Bold(true),
		CursorStyle:     lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		NowStyle:        lipgloss.NewStyle().Foreground(p.Current).Bold(true),
		GapStyle:        lipgloss.NewStyle().Foreground(p.FgMuted).Italic(true),

		FooterStyle: lipgloss.NewStyle().Foreground(p.FgMuted),
		KeyStyle:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		StatusStyle: lipgloss.NewStyle().Foreground(p.Fg),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.TextOnWarning).
			Background(p.Warning).
			Padding(0, 1),

		ModalStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Background(p.BgHighlight).
			Foreground(p.Fg).
			Padding(0, 1),
		ModalTitleStyle: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		LabelStyle:      lipgloss.NewStyle().Foreground(p.FgMuted).Width(7),
		WarningStyle:    lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
	}
}

// Block returns the style a block of color is drawn with. alt selects the
// alternate shade used when the previous block has the same color.
func (s Styles) Block(color string, past, alt, selected bool) lipgloss.Style {
	c := s.palette.Block(color, past)
	bg := c.Bg
	if alt {
		bg = c.BgAlt
	}
	style := lipgloss.NewStyle().Background(bg).Foreground(c.Text).Padding(0, 1)
	if selected {
		style = style.Bold(true).Underline(true)
	}
	return style
}
