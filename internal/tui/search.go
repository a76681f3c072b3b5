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

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	if m.searching {
		switch {
		case key.Matches(msg, InputKeys.Cancel):
			m.Screen = ScreenInstalled
			return m, nil

		case key.Matches(msg, InputKeys.Confirm):
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}

			m.query = query
			m.searching = false
			m.pending = true
			m.searchResults = nil
			m.input.Blur()

			return m, m.searchCmd(query)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	n := len(m.searchResults)

	switch {
	case key.Matches(msg, SharedKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ListKeys.Back):
		m.Screen = ScreenInstalled

	case key.Matches(msg, ListKeys.Up):
		m.searchList.move(-1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Down):
		m.searchList.move(1, n, m.visibleRows())

	case key.Matches(msg, ListKeys.Toggle):
		reconcile.Toggle(m.searchResults, m.searchList.cursor)

	case key.Matches(msg, SelectionKeys.NewSearch):
		m.searching = true
		m.input.Focus()

		return m, textinput.Blink

	case key.Matches(msg, SelectionKeys.Install):
		return m.submit(batch.OpInstall, reconcile.Selection(m.searchResults))
	}

	return m, nil
}

func (m Model) searchCmd(query string) tea.Cmd {
	mgr, ctx := m.Manager, m.ctx
	if mgr == nil {
		return nil
	}

	return func() tea.Msg {
		return searchResultsMsg{query: query, entries: mgr.Search(ctx, query)}
	}
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Search"))
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.renderStatus())
		b.WriteString(RenderHelp("enter", "search", "esc", "back"))

		return BaseStyle.Render(b.String())
	}

	switch {
	case m.pending:
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Searching for %q...", m.query)))
		b.WriteString("\n")
	case len(m.searchResults) == 0:
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("No results for %q", m.query)))
		b.WriteString("\n")
	default:
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s for %q", plural(len(m.searchResults), "result"), m.query)))
		b.WriteString("\n")
		b.WriteString(renderChecklist(m.searchResults, m.searchList, m.visibleRows(), nil))
	}

	b.WriteString(m.renderStatus())
	b.WriteString(RenderBindings(
		ListKeys.Toggle,
		SelectionKeys.Install,
		SelectionKeys.NewSearch,
		ListKeys.Back,
	))

	return BaseStyle.Render(b.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}
