// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// DefaultName is the theme used when none is configured.
const DefaultName = "mocha"

// ErrUnknownTheme is returned by Load for names with no embedded theme.
var ErrUnknownTheme = errors.New("unknown theme")

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme holds the colors of the day view.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // modal background
	BgSelection string `toml:"bg_selection"`
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // times, gaps, help
	Accent      string `toml:"accent"`   // title, cursor, borders
	Current     string `toml:"current"`  // now marker
	Warning     string `toml:"warning"`  // errors, delete confirmation

	// Swatches are the block colors offered by the add form, in order.
	Swatches []string `toml:"swatches"`
}

// Load loads an embedded theme by name. An empty name loads DefaultName.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultName
	}

	data, err := embeddedThemes.ReadFile(path.Join("embedded", name+".toml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTheme, name, strings.Join(Available(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}
	return &t, nil
}

// validate checks every color and fills in the swatches when a theme
// declares none.
func (t *Theme) validate() error {
	base := []struct{ key, hex string }{
		{"bg", t.Bg}, {"bg_highlight", t.BgHighlight}, {"bg_selection", t.BgSelection},
		{"fg", t.Fg}, {"fg_muted", t.FgMuted}, {"accent", t.Accent},
		{"current", t.Current}, {"warning", t.Warning},
	}
	for _, c := range base {
		if err := task.ValidateColor(c.hex); err != nil {
			return fmt.Errorf("%s: %w", c.key, err)
		}
	}

	if len(t.Swatches) == 0 {
		t.Swatches = []string{t.Accent, t.Current, t.Warning}
	}
	for i, hex := range t.Swatches {
		if err := task.ValidateColor(hex); err != nil {
			return fmt.Errorf("swatch %d: %w", i+1, err)
		}
		t.Swatches[i] = strings.ToLower(hex)
	}
	return nil
}

// Available returns the names of the embedded themes, sorted.
func Available() []string {
	entries, _ := embeddedThemes.ReadDir("embedded")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".toml"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(strings.TrimSpace(name)))
}
