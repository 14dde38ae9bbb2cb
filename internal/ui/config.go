package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  dayblocks config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(config.DefaultConfigPath(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	_, _ = fmt.Fprint(out, "\nWould you like to edit the configuration? [y/N]: ")
	answer, _ := reader.ReadString('\n')
	if a := strings.TrimSpace(strings.ToLower(answer)); a != "y" && a != "yes" {
		return nil
	}

	p := prompter{in: reader, out: out}
	cfg.Schedule.DayStart = p.value("Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = p.value("Day end", cfg.Schedule.DayEnd)
	cfg.Storage.Driver = p.value("Storage driver (sqlite, postgres, memory)", cfg.Storage.Driver)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Storage.DSN = p.value("PostgreSQL DSN", cfg.Storage.DSN)
	cfg.Log.Level = p.value("Log level", cfg.Log.Level)
	cfg.Server.Addr = p.value("API listen address", cfg.Server.Addr)
	cfg.LLM.Provider = p.value("LLM provider", cfg.LLM.Provider)
	cfg.LLM.Model = p.value("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.value("LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.UI.DefaultColor = p.value("Default block color", cfg.UI.DefaultColor)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }

	w("Current configuration:\n")
	w("──────────────────────\n")
	w("[schedule]\n")
	w("  day_start        = %s\n", cfg.Schedule.DayStart)
	w("  day_end          = %s\n", cfg.Schedule.DayEnd)
	w("\n[storage]\n")
	w("  driver           = %s\n", cfg.Storage.Driver)
	w("  db_path          = %s\n", cfg.Storage.DBPath)
	if cfg.Storage.DSN != "" {
		w("  dsn              = %s\n", "(set)")
	}
	w("\n[log]\n")
	w("  level            = %s\n", cfg.Log.Level)
	w("  format           = %s\n", cfg.Log.Format)
	w("\n[server]\n")
	w("  addr             = %s\n", cfg.Server.Addr)
	w("  rate_per_sec     = %g\n", cfg.Server.RatePerSec)
	w("\n[llm]\n")
	w("  provider         = %s\n", cfg.LLM.Provider)
	w("  model            = %s\n", cfg.LLM.Model)
	w("  base_url         = %s\n", cfg.LLM.BaseURL)
	w("\n[ui]\n")
	w("  theme            = %s\n", cfg.UI.Theme)
	w("  default_color    = %s\n", cfg.UI.DefaultColor)
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		_, _ = fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		_, _ = fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	input, _ := p.in.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		_, _ = fmt.Fprintf(p.out, "  Invalid theme %q. Available: %s\n", value, options)
		if current == "" || !theme.IsAvailable(current) {
			current = theme.DefaultName
		}
	}
}
