package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/config"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	if m.session == nil {
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

			return m, m.importCmd(path)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	n := m.session.Len()

	switch {
	case key.Matches(msg, SharedKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ListKeys.Back):
		m.session = nil
		m.Screen = ScreenInstalled

	case key.Matches(msg, ListKeys.Up):
		m.importList.move(-1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Down):
		m.importList.move(1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Toggle):
		m.session.Toggle(m.importList.cursor)

	case key.Matches(msg, ListKeys.SelectAll):
		m.session.SetAll(true)

	case key.Matches(msg, ListKeys.SelectNone):
		m.session.SetAll(false)

	case key.Matches(msg, SelectionKeys.Install):
		session, ctx := m.session, m.ctx
		return m.startBatch(batch.OpInstall, len(session.Selection()), func() (<-chan batch.Result, error) {
			return session.SubmitInstall(ctx)
		})
	}

	return m, nil
}

func (m Model) importCmd(path string) tea.Cmd {
	mgr, ctx := m.Manager, m.ctx
	if mgr == nil {
		return nil
	}

	return func() tea.Msg {
		s, err := mgr.Import(ctx, path)
		return importLoadedMsg{session: s, err: err}
	}
}

func (m Model) viewImport() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Import"))
	b.WriteString("\n")

	if m.session == nil {
		b.WriteString(SubtitleStyle.Render("Load a package list exported by tidybrew"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")

		if m.pending {
			b.WriteString(MutedTextStyle.Render("Loading..."))
			b.WriteString("\n")
		}

		b.WriteString(m.renderStatus())
		b.WriteString(RenderHelp("enter", "load", "esc", "back"))

		return BaseStyle.Render(b.String())
	}

	selectable, locked := m.session.Counts()
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s: %d available, %d already installed",
		filepath.Base(m.session.Source), selectable, locked)))
	b.WriteString("\n")
	b.WriteString(renderChecklist(m.session.Entries(), m.importList, m.visibleRows(), nil))
	b.WriteString(m.renderStatus())
	b.WriteString(RenderBindings(
		ListKeys.Toggle,
		ListKeys.SelectAll,
		ListKeys.SelectNone,
		SelectionKeys.Install,
		ListKeys.Back,
	))

	return BaseStyle.Render(b.String())
}
