package tui

import (
	"fmt"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateInstalled(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	n := len(m.installed)

	switch {
	case key.Matches(msg, SharedKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ListKeys.Up):
		m.installedList.move(-1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Down):
		m.installedList.move(1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Toggle):
		reconcile.Toggle(m.installed, m.installedList.cursor)

	case key.Matches(msg, InstalledKeys.Uninstall):
		return m.submit(batch.OpUninstall, reconcile.Selection(m.installed))

	case key.Matches(msg, InstalledKeys.Refresh):
		m.loading = true
		return m, m.refreshCmd()

	case key.Matches(msg, InstalledKeys.Search):
		m.Screen = ScreenSearch
		m.searching = true
		m.query = ""
		m.searchResults = nil
		m.input = newInput("Search: ", "package name", "")

		return m, textinput.Blink

	case key.Matches(msg, InstalledKeys.Import):
		m.Screen = ScreenImport
		m.session = nil
		m.input = newInput("File: ", "path to a package list", "")

		return m, textinput.Blink

	case key.Matches(msg, InstalledKeys.Export):
		m.Screen = ScreenExport
		m.input = newInput("Export to: ", "path", m.exportPath)

		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) viewInstalled() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("tidybrew"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d casks, %d formulae installed", m.counts[0], m.counts[1])))
	b.WriteString("\n")

	switch {
	case m.loading && len(m.installed) == 0:
		b.WriteString(MutedTextStyle.Render(MsgLoading) + "\n")
	case len(m.installed) == 0:
		b.WriteString(MutedTextStyle.Render(MsgNoInstalled) + "\n")
	default:
		b.WriteString(renderChecklist(m.installed, m.installedList, m.visibleRows(), m.categories))
	}

	b.WriteString(m.renderStatus())
	b.WriteString(RenderBindings(
		ListKeys.Toggle,
		InstalledKeys.Uninstall,
		InstalledKeys.Refresh,
		InstalledKeys.Search,
		InstalledKeys.Import,
		InstalledKeys.Export,
		SharedKeys.Quit,
	))

	return BaseStyle.Render(b.String())
}
