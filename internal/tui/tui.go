// Package tui is the interactive settings panel. Adjustments apply live
// through the daemon's IPC socket when it is running; saving writes the
// values to the config file either way.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// TUI wraps the bubbletea program.
type TUI struct {
	configPath string
}

// New creates a new TUI instance. An empty configPath uses the default
// config location.
func New(configPath string) *TUI {
	return &TUI{configPath: configPath}
}

// Run starts the TUI main loop, blocking until quit.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(t.configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
