package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/tui/commands"
)

// DebugLogPath is the fixed path for debug logs
const DebugLogPath = "dayblocks-debug.log"

var (
	debugLog  = zerolog.Nop()
	debugFile *os.File
)

// InitDebugLogger starts logging TUI events to DebugLogPath when enabled.
func InitDebugLogger(enabled bool) error {
	if !enabled {
		debugLog = zerolog.Nop()
		commands.SetLogger(debugLog)
		return nil
	}

	f, err := os.Create(DebugLogPath)
	if err != nil {
		return fmt.Errorf("creating debug log: %w", err)
	}
	debugFile = f
	debugLog = zerolog.New(f).With().Timestamp().Logger()
	debugLog.Debug().Str("log_file", DebugLogPath).Msg("debug start")
	commands.SetLogger(debugLog)
	return nil
}

// CloseDebugLogger closes the debug log file.
func CloseDebugLogger() {
	if debugFile == nil {
		return
	}
	debugLog.Debug().Msg("debug end")
	_ = debugFile.Close()
	debugFile = nil
	debugLog = zerolog.Nop()
	commands.SetLogger(debugLog)
}

// LogKeyPress records a keystroke.
func LogKeyPress(msg tea.KeyMsg) {
	debugLog.Debug().Str("key", msg.String()).Msg("key")
}

// LogModeChange records a mode transition.
func LogModeChange(from, to Mode) {
	if from == to {
		return
	}
	debugLog.Debug().Str("from", from.String()).Str("to", to.String()).Msg("mode")
}

// LogEvent records an arbitrary TUI event.
func LogEvent(event string, fields map[string]any) {
	debugLog.Debug().Fields(fields).Msg(event)
}
