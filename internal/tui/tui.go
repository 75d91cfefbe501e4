package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/chat"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

// Options configures the TUI
type Options struct {
	// Recognizer may be nil when no recognition engine is available.
	Recognizer speech.Recognizer
	Muted      bool
	Cloud      bool
	// GlamourStyle names a standard glamour style; empty picks one from the
	// terminal background.
	GlamourStyle string
	Logger       zerolog.Logger
}

// TUI is the terminal user interface for a chat engine.
type TUI struct {
	opts Options
	view *programView
}

// New creates a TUI. Pass View() to the engine, then Run with the engine.
func New(opts Options) *TUI {
	return &TUI{opts: opts, view: &programView{}}
}

// View is the chat.View that feeds engine events to the running program.
func (t *TUI) View() chat.View {
	return t.view
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func (t *TUI) Run(ctx context.Context, ctrl Controller) error {
	model := NewModel(ctrl, t.opts)
	model.ctx = ctx

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	t.view.attach(program)
	defer t.view.detach()

	stop := context.AfterFunc(ctx, program.Quit)
	defer stop()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
