package tui

import (
	"fmt"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/config"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, InputKeys.Cancel):
		m.Screen = ScreenInstalled
		return m, nil

	case key.Matches(msg, InputKeys.Confirm):
		path := config.ExpandHome(strings.TrimSpace(m.input.Value()))
		if path == "" || m.pending {
			return m, nil
		}

		m.pending = true

		return m, m.exportCmd(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) exportCmd(path string) tea.Cmd {
	mgr, ctx := m.Manager, m.ctx
	if mgr == nil {
		return nil
	}

	return func() tea.Msg {
		doc, err := mgr.Export(ctx, path)
		return exportDoneMsg{doc: doc, err: err, path: path}
	}
}

func exportNotice(doc *pkglist.Document, path string) string {
	return fmt.Sprintf("Exported %s to %s", plural(doc.Len(), "package"), path)
}

func (m Model) viewExport() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Export"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Write the installed packages as a JSON list"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.pending {
		b.WriteString(MutedTextStyle.Render("Exporting..."))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString(RenderHelp("enter", "export", "esc", "back"))

	return BaseStyle.Render(b.String())
}
