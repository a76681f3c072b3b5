// Package tui provides the terminal user interface.
package tui

import (
	"context"
	"errors"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/manager"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
	"github.com/AntoineGS/tidybrew/internal/pkgset"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen identifies the active view.
type Screen int

// Screens.
const (
	ScreenInstalled Screen = iota
	ScreenSearch
	ScreenImport
	ScreenExport
	ScreenProgress
	ScreenResults
)

// Model is the bubbletea model for the whole application.
type Model struct {
	ctx           context.Context
	Manager       *manager.Manager
	session       *manager.Session
	result        *batch.Result
	categories    map[string]string
	status        string
	exportPath    string
	query         string
	installed     []reconcile.Entry
	searchResults []reconcile.Entry
	progressLog   []batch.Progress
	input         textinput.Model
	spinner       spinner.Model
	installedList listState
	searchList    listState
	importList    listState
	counts        [2]int // casks, formulae
	Screen        Screen
	op            batch.Operation
	total         int
	width         int
	height        int
	statusIsError bool
	loading       bool // installed list refresh
	pending       bool // search, import or export request
	busy          bool
	searching     bool
}

// Messages delivered by commands.
type (
	installedMsg struct {
		installed brew.Installed
	}

	searchResultsMsg struct {
		query   string
		entries []reconcile.Entry
	}

	importLoadedMsg struct {
		session *manager.Session
		err     error
	}

	exportDoneMsg struct {
		doc  *pkglist.Document
		err  error
		path string
	}

	batchProgressMsg batch.Progress

	batchDoneMsg struct {
		result batch.Result
	}
)

// NewModel creates the initial model. exportPath prefills the export prompt.
func NewModel(ctx context.Context, mgr *manager.Manager, exportPath string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return Model{
		ctx:        ctx,
		Manager:    mgr,
		exportPath: exportPath,
		categories: map[string]string{},
		spinner:    s,
		input:      newInput("", "", ""),
		Screen:     ScreenInstalled,
		width:      DefaultWidth,
		height:     DefaultHeight,
		loading:    true,
	}
}

func newInput(prompt, placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 4096
	ti.Focus()

	return ti
}

// Init loads the installed packages and starts listening for progress.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForProgress())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-20)
		m.installedList.clamp(len(m.installed), m.visibleRows())
		m.searchList.clamp(len(m.searchResults), m.visibleRows())

		return m, nil

	case installedMsg:
		m.loading = false
		m.setInstalled(msg.installed)

		return m, nil

	case searchResultsMsg:
		if msg.query != m.query {
			return m, nil
		}

		m.pending = false
		m.searchResults = msg.entries
		m.searchList = listState{}

		return m, nil

	case importLoadedMsg:
		m.pending = false

		if msg.err != nil {
			m.setStatus("Import failed: "+msg.err.Error(), true)
			return m, nil
		}

		m.session = msg.session
		m.importList = listState{}

		return m, nil

	case exportDoneMsg:
		m.pending = false

		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}

		m.Screen = ScreenInstalled
		m.setStatus(exportNotice(msg.doc, msg.path), false)

		return m, nil

	case batchProgressMsg:
		m.progressLog = append(m.progressLog, batch.Progress(msg))
		if len(m.progressLog) > ProgressLogLines {
			m.progressLog = m.progressLog[len(m.progressLog)-ProgressLogLines:]
		}

		return m, m.waitForProgress()

	case batchDoneMsg:
		res := msg.result
		m.busy = false
		m.result = &res
		m.Screen = ScreenResults
		m.loading = true

		return m, m.refreshCmd()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, SharedKeys.ForceQuit) {
		return m, tea.Quit
	}

	// Input is blocked while a batch runs.
	if m.busy {
		return m, nil
	}

	switch m.Screen {
	case ScreenInstalled:
		return m.updateInstalled(msg)
	case ScreenSearch:
		return m.updateSearch(msg)
	case ScreenImport:
		return m.updateImport(msg)
	case ScreenExport:
		return m.updateExport(msg)
	case ScreenResults:
		return m.updateResults(msg)
	}

	return m, nil
}

// View renders the active screen.
func (m Model) View() string {
	switch m.Screen {
	case ScreenInstalled:
		return m.viewInstalled()
	case ScreenSearch:
		return m.viewSearch()
	case ScreenImport:
		return m.viewImport()
	case ScreenExport:
		return m.viewExport()
	case ScreenProgress:
		return m.viewProgress()
	case ScreenResults:
		return m.viewResults()
	}

	return ""
}

func (m Model) visibleRows() int {
	return max(MinVisibleRows, m.height-ViewOverhead)
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusIsError = isError
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}

	style := WarningStyle
	if m.statusIsError {
		style = ErrorStyle
	}

	return "\n" + style.Render(m.status) + "\n"
}

// setInstalled replaces the installed list, keeping the selection of
// packages that are still installed.
func (m *Model) setInstalled(in brew.Installed) {
	selected := pkgset.New(reconcile.Selection(m.installed)...)

	m.installed = reconcile.FromNames(in.All(), pkgset.New())
	for i := range m.installed {
		m.installed[i].Selected = selected.Has(m.installed[i].Name)
	}

	m.categories = make(map[string]string, len(m.installed))
	for _, name := range in.Formulae {
		m.categories[name] = string(brew.Formula)
	}

	for _, name := range in.Casks {
		m.categories[name] = string(brew.Cask)
	}

	m.counts = [2]int{len(in.Casks), len(in.Formulae)}
	m.installedList.clamp(len(m.installed), m.visibleRows())
}

func (m Model) refreshCmd() tea.Cmd {
	mgr, ctx := m.Manager, m.ctx
	if mgr == nil {
		return nil
	}

	return func() tea.Msg {
		return installedMsg{installed: mgr.Refresh(ctx)}
	}
}

func (m Model) waitForProgress() tea.Cmd {
	if m.Manager == nil {
		return nil
	}

	progress := m.Manager.Progress()

	return func() tea.Msg {
		p, ok := <-progress
		if !ok {
			return nil
		}

		return batchProgressMsg(p)
	}
}

func waitForResult(ch <-chan batch.Result) tea.Cmd {
	return func() tea.Msg {
		return batchDoneMsg{result: <-ch}
	}
}

// submit starts op over names.
func (m Model) submit(op batch.Operation, names []string) (tea.Model, tea.Cmd) {
	mgr, ctx := m.Manager, m.ctx

	return m.startBatch(op, len(batch.Distinct(names)), func() (<-chan batch.Result, error) {
		return mgr.SubmitBatch(ctx, op, names)
	})
}

func (m Model) startBatch(op batch.Operation, total int, submit func() (<-chan batch.Result, error)) (tea.Model, tea.Cmd) {
	ch, err := submit()
	if err != nil {
		switch {
		case errors.Is(err, manager.ErrNoSelection):
			m.setStatus(MsgNoSelection, false)
		case errors.Is(err, manager.ErrBusy):
			m.setStatus(MsgBusy, false)
		default:
			m.setStatus(err.Error(), true)
		}

		return m, nil
	}

	m.busy = true
	m.op = op
	m.total = total
	m.progressLog = nil
	m.result = nil
	m.status = ""
	m.Screen = ScreenProgress

	return m, tea.Batch(m.spinner.Tick, waitForResult(ch))
}
