package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Options configures Run
type Options struct {
	Client      ConfigClient
	Prefs       PrefStore
	OpenOnStart bool
}

// Run starts the settings editor. A save ends the event loop and starts a
// fresh editor that re-reads preferences and refetches the configuration.
func Run(opts Options) error {
	if !isTerminal() {
		return fmt.Errorf("modelcfg settings requires a terminal. Use 'modelcfg models' for non-interactive mode")
	}

	openOnStart := opts.OpenOnStart
	for {
		m := NewModel(opts.Client, opts.Prefs, openOnStart)
		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}

		fm, ok := final.(Model)
		if !ok || !fm.ReloadRequested() {
			return nil
		}
		logrus.Info("Reloading settings editor")
		openOnStart = false
	}
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
