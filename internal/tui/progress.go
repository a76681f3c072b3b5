package tui

import (
	"fmt"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func progressVerb(op batch.Operation) string {
	if op == batch.OpUninstall {
		return "Uninstalling"
	}

	return "Installing"
}

func (m Model) viewProgress() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(progressVerb(m.op)))
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(ProgressStyle.Render(fmt.Sprintf("%s %s...", progressVerb(m.op), plural(m.total, "package"))))
	b.WriteString("\n\n")

	for _, p := range m.progressLog {
		if p.OK {
			b.WriteString(SuccessStyle.Render("✓") + " " + p.Name)
		} else {
			b.WriteString(ErrorStyle.Render("✗") + " " + p.Name)
		}

		b.WriteString(MutedTextStyle.Render(fmt.Sprintf("  (%d/%d)", p.Index+1, p.Total)))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("Input is disabled until the batch finishes."))

	return BaseStyle.Render(b.String())
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, SharedKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, ResultKeys.Close):
		m.Screen = ScreenInstalled
		m.status = ""
	}

	return m, nil
}

// headlineStyle is a warning for a partial failure and an error when
// nothing succeeded.
func headlineStyle(res batch.Result) lipgloss.Style {
	switch {
	case res.Partial():
		return WarningStyle
	case res.HasFailures():
		return ErrorStyle
	}

	return SuccessStyle
}

func (m Model) viewResults() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Results"))
	b.WriteString("\n")

	if m.result != nil {
		lines := strings.Split(m.result.Report(), "\n")

		b.WriteString(headlineStyle(*m.result).Render(lines[0]))
		b.WriteString("\n")

		for _, line := range lines[1:] {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderStatus())
	b.WriteString(RenderBindings(ResultKeys.Close, SharedKeys.Quit))

	return BaseStyle.Render(b.String())
}
