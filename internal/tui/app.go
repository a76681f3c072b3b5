package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AntoineGS/tidybrew/internal/manager"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrUnexpectedModel is returned when the program exits with a model of the
// wrong type.
var ErrUnexpectedModel = errors.New("unexpected model type")

// Run starts the interactive TUI. The manager must already be configured;
// Run does not close it.
func Run(ctx context.Context, mgr *manager.Manager, exportPath string) error {
	model := NewModel(ctx, mgr, exportPath)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(Model)
	if !ok {
		return ErrUnexpectedModel
	}

	if m.Screen == ScreenResults && m.result != nil {
		printFinalSummary(m)
	}

	return nil
}

// printFinalSummary repeats the last report on the normal screen once the
// alternate screen is gone.
func printFinalSummary(m Model) {
	fmt.Println()
	fmt.Println(m.result.Report())
}

// IsTerminal reports whether stdin and stdout are both terminals.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
