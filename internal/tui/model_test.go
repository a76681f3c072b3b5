package tui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/manager"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
	"github.com/AntoineGS/tidybrew/internal/platform"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
	"github.com/AntoineGS/tidybrew/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var testPlatform = &platform.Platform{OS: platform.OSDarwin, Hostname: "testhost"}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
	upKey    = tea.KeyMsg{Type: tea.KeyUp}
)

// newTestModel creates a model without a manager. Commands that need brew
// come back nil.
func newTestModel(installed brew.Installed) Model {
	m := NewModel(context.Background(), nil, "/tmp/export.json")
	return update(m, installedMsg{installed: installed})
}

func newTestManager(t *testing.T, opts testutil.FakeBrewOptions) *manager.Manager {
	t.Helper()

	fb := testutil.NewFakeBrew(t, opts)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	return manager.New(brew.New(fb.Path).WithLogger(logger), testPlatform).WithLogger(logger)
}

func update(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model) //nolint:errcheck // Update always returns Model
	}

	return m
}

// drain runs cmd and any batched commands, returning every message produced.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batched, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batched {
			out = append(out, drain(c)...)
		}

		return out
	}

	return []tea.Msg{msg}
}

func TestNewModel(t *testing.T) {
	t.Parallel()

	m := NewModel(context.Background(), nil, "")

	if m.Screen != ScreenInstalled {
		t.Errorf("Screen = %v, want ScreenInstalled", m.Screen)
	}

	if !m.loading {
		t.Error("new model should be loading")
	}

	if m.Init() != nil {
		t.Error("Init() without a manager should return nil")
	}
}

func TestSetInstalled(t *testing.T) {
	t.Parallel()

	m := newTestModel(brew.Installed{Casks: []string{"firefox"}, Formulae: []string{"git", "jq"}})

	if m.loading {
		t.Error("loading should clear after installedMsg")
	}

	var names []string
	for _, e := range m.installed {
		names = append(names, e.Name)

		if !e.Selectable || e.Selected || e.AlreadyInstalled {
			t.Errorf("installed entry %+v should be selectable and unselected", e)
		}
	}

	if want := []string{"firefox", "git", "jq"}; !reflect.DeepEqual(names, want) {
		t.Errorf("installed = %v, want %v", names, want)
	}

	if m.categories["firefox"] != "cask" || m.categories["jq"] != "formula" {
		t.Errorf("categories = %v", m.categories)
	}
}

func TestSetInstalled_KeepsSelection(t *testing.T) {
	t.Parallel()

	m := newTestModel(brew.Installed{Formulae: []string{"a", "b", "c"}})
	m = update(m, downKey, spaceKey, downKey, spaceKey)

	if got := reconcile.Selection(m.installed); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("Selection() = %v, want [b c]", got)
	}

	m = update(m, installedMsg{installed: brew.Installed{Formulae: []string{"a", "b"}}})

	if got := reconcile.Selection(m.installed); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Selection() after refresh = %v, want [b]", got)
	}

	if m.installedList.cursor != 1 {
		t.Errorf("cursor = %d, want 1 after clamping", m.installedList.cursor)
	}
}

func TestInstalled_Navigation(t *testing.T) {
	t.Parallel()

	m := newTestModel(brew.Installed{Formulae: []string{"a", "b"}})

	m = update(m, upKey)
	if m.installedList.cursor != 0 {
		t.Errorf("cursor after up at top = %d", m.installedList.cursor)
	}

	m = update(m, downKey, downKey, downKey)
	if m.installedList.cursor != 1 {
		t.Errorf("cursor after moving past the end = %d", m.installedList.cursor)
	}
}

func TestInstalled_ScreenSwitching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  tea.KeyMsg
		want Screen
	}{
		{"search", runeKey("/"), ScreenSearch},
		{"import", runeKey("i"), ScreenImport},
		{"export", runeKey("e"), ScreenExport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := update(newTestModel(brew.Installed{}), tt.key)
			if m.Screen != tt.want {
				t.Errorf("Screen = %v, want %v", m.Screen, tt.want)
			}

			m = update(m, escKey)
			if m.Screen != ScreenInstalled {
				t.Errorf("esc left Screen = %v", m.Screen)
			}
		})
	}
}

func TestExport_PrefillsPath(t *testing.T) {
	t.Parallel()

	m := update(newTestModel(brew.Installed{}), runeKey("e"))

	if got := m.input.Value(); got != "/tmp/export.json" {
		t.Errorf("export input = %q, want the default export path", got)
	}

	m.pending = true
	m = update(m, exportDoneMsg{doc: &pkglist.Document{Formula: []string{"jq"}}, path: "/tmp/export.json"})

	if m.Screen != ScreenInstalled || m.status != "Exported 1 package to /tmp/export.json" {
		t.Errorf("after export Screen = %v, status = %q", m.Screen, m.status)
	}
}

func TestExport_ErrorStaysOnPrompt(t *testing.T) {
	t.Parallel()

	m := update(newTestModel(brew.Installed{}), runeKey("e"))
	m = update(m, exportDoneMsg{err: errors.New("permission denied"), path: "/x"})

	if m.Screen != ScreenExport || !m.statusIsError {
		t.Errorf("Screen = %v, statusIsError = %v", m.Screen, m.statusIsError)
	}
}

func TestExport_WhileRefreshing(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, testutil.FakeBrewOptions{Formulae: []string{"jq"}})
	path := filepath.Join(t.TempDir(), "brew$HOME.json")

	// The startup refresh has not answered yet.
	m := NewModel(context.Background(), mgr, path)
	m = update(m, runeKey("e"))

	next, cmd := m.Update(enterKey)
	m = next.(Model) //nolint:errcheck // Update always returns Model

	if cmd == nil || !m.pending {
		t.Fatalf("export was not started, pending = %v", m.pending)
	}

	m = update(m, drain(cmd)...)

	if want := "Exported 1 package to " + path; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file not written at the typed path: %v", err)
	}
}

func TestUninstall_NoSelection(t *testing.T) {
	t.Parallel()

	mgr := manager.New(brew.New(filepath.Join(t.TempDir(), "brew")), testPlatform)
	m := NewModel(context.Background(), mgr, "")
	m = update(m, installedMsg{installed: brew.Installed{Formulae: []string{"jq"}}})

	next, cmd := m.Update(runeKey("u"))
	m = next.(Model) //nolint:errcheck // Update always returns Model

	if cmd != nil {
		t.Error("no batch command should be returned without a selection")
	}

	if m.status != MsgNoSelection || m.Screen != ScreenInstalled {
		t.Errorf("status = %q, Screen = %v", m.status, m.Screen)
	}

	if m.busy || mgr.Busy() {
		t.Error("nothing should be running")
	}
}

func TestUninstall_BatchFlow(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, testutil.FakeBrewOptions{
		Formulae:      []string{"docker", "jq", "wget"},
		FailUninstall: map[string]string{"docker": "Error: Permission denied"},
	})

	m := NewModel(context.Background(), mgr, "")
	m = update(m, installedMsg{installed: mgr.Refresh(context.Background())})
	m = update(m, spaceKey, downKey, spaceKey)

	next, cmd := m.Update(runeKey("u"))
	m = next.(Model) //nolint:errcheck // Update always returns Model

	if m.Screen != ScreenProgress || !m.busy || m.total != 2 {
		t.Fatalf("Screen = %v, busy = %v, total = %d", m.Screen, m.busy, m.total)
	}

	// Input is blocked while the batch runs.
	if blocked, quit := m.Update(runeKey("q")); quit != nil || blocked.(Model).Screen != ScreenProgress { //nolint:errcheck // Update always returns Model
		t.Error("keys should be ignored during a batch")
	}

	var done *batchDoneMsg
	for _, msg := range drain(cmd) {
		if d, ok := msg.(batchDoneMsg); ok {
			done = &d
		}
	}

	if done == nil {
		t.Fatal("batch command did not deliver a result")
	}

	next, cmd = m.Update(*done)
	m = next.(Model) //nolint:errcheck // Update always returns Model

	if m.Screen != ScreenResults || m.busy {
		t.Errorf("Screen = %v, busy = %v after completion", m.Screen, m.busy)
	}

	if !reflect.DeepEqual(m.result.Succeeded, []string{"jq"}) || !reflect.DeepEqual(m.result.Failed, []string{"docker"}) {
		t.Errorf("result = %+v", m.result)
	}

	if cmd == nil {
		t.Fatal("completion should trigger a refresh")
	}

	m = update(m, drain(cmd)...)
	m = update(m, enterKey)

	if m.Screen != ScreenInstalled {
		t.Errorf("Screen after closing results = %v", m.Screen)
	}
}

func TestStartBatch_Busy(t *testing.T) {
	t.Parallel()

	m := newTestModel(brew.Installed{})

	next, cmd := m.startBatch(batch.OpInstall, 1, func() (<-chan batch.Result, error) {
		return nil, manager.ErrBusy
	})
	m = next.(Model) //nolint:errcheck // startBatch always returns Model

	if cmd != nil || m.status != MsgBusy || m.Screen != ScreenInstalled {
		t.Errorf("status = %q, Screen = %v, cmd = %v", m.status, m.Screen, cmd != nil)
	}
}

func TestSearch_StaleResultsIgnored(t *testing.T) {
	t.Parallel()

	m := update(newTestModel(brew.Installed{}), runeKey("/"), runeKey("w"), runeKey("g"), enterKey)

	if m.searching || m.query != "wg" || !m.pending {
		t.Fatalf("searching = %v, query = %q, pending = %v", m.searching, m.query, m.pending)
	}

	m = update(m, searchResultsMsg{query: "old", entries: []reconcile.Entry{{Name: "stale"}}})
	if len(m.searchResults) != 0 {
		t.Error("results for an older query were applied")
	}

	m = update(m, searchResultsMsg{query: "wg", entries: []reconcile.Entry{{Name: "wget", Selectable: true}}})
	if len(m.searchResults) != 1 || m.pending {
		t.Errorf("searchResults = %v, pending = %v", m.searchResults, m.pending)
	}

	m = update(m, spaceKey)
	if got := reconcile.Selection(m.searchResults); !reflect.DeepEqual(got, []string{"wget"}) {
		t.Errorf("Selection() = %v, want [wget]", got)
	}
}

func TestSearch_EmptyQueryIgnored(t *testing.T) {
	t.Parallel()

	m := update(newTestModel(brew.Installed{}), runeKey("/"), runeKey(" "), enterKey)

	if !m.searching || m.pending {
		t.Errorf("blank query should not search: searching = %v, pending = %v", m.searching, m.pending)
	}
}

func TestImport_MalformedKeepsState(t *testing.T) {
	t.Parallel()

	m := update(newTestModel(brew.Installed{}), runeKey("i"))
	m.pending = true

	m = update(m, importLoadedMsg{err: pkglist.NewImportError("/x.json", pkglist.ErrMalformed)})

	if m.session != nil || m.Screen != ScreenImport || m.pending {
		t.Errorf("session = %v, Screen = %v, pending = %v", m.session, m.Screen, m.pending)
	}

	if !strings.HasPrefix(m.status, "Import failed: ") || !m.statusIsError {
		t.Errorf("status = %q", m.status)
	}
}

func TestImport_SelectionKeys(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, testutil.FakeBrewOptions{Casks: []string{"firefox"}})
	path := filepath.Join(t.TempDir(), "list.json")

	if err := os.WriteFile(path, []byte(`{"cask": ["firefox", "vscode", "zoom"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	// The startup refresh is still in flight when the path is submitted.
	m := NewModel(context.Background(), mgr, "")
	m = update(m, runeKey("i"))

	for _, r := range path {
		m = update(m, runeKey(string(r)))
	}

	next, cmd := m.Update(enterKey)
	m = update(next.(Model), drain(cmd)...) //nolint:errcheck // Update always returns Model

	if m.session == nil {
		t.Fatalf("import did not load a session, status = %q", m.status)
	}

	m = update(m, runeKey("n"))
	if got := m.session.Selection(); len(got) != 0 {
		t.Errorf("Selection() after none = %v", got)
	}

	m = update(m, spaceKey) // locked firefox
	m = update(m, downKey, downKey, spaceKey)

	if got := m.session.Selection(); !reflect.DeepEqual(got, []string{"zoom"}) {
		t.Errorf("Selection() = %v, want [zoom]", got)
	}

	m = update(m, escKey)
	if m.Screen != ScreenInstalled || m.session != nil {
		t.Errorf("esc should leave the import, Screen = %v", m.Screen)
	}
}

func TestHeadlineStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  batch.Result
		want lipgloss.TerminalColor
	}{
		{"all succeeded", batch.Result{Succeeded: []string{"a"}}, secondaryColor},
		{"partial failure", batch.Result{Succeeded: []string{"a"}, Failed: []string{"b"}}, accentColor},
		{"all failed", batch.Result{Failed: []string{"b"}}, errorColor},
		{"empty batch", batch.Result{}, secondaryColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := headlineStyle(tt.res).GetForeground(); got != tt.want {
				t.Errorf("headline color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressMessagesCapped(t *testing.T) {
	t.Parallel()

	m := newTestModel(brew.Installed{})
	for i := 0; i < ProgressLogLines+3; i++ {
		m = update(m, batchProgressMsg{Name: "pkg", Index: i, Total: ProgressLogLines + 3, OK: true})
	}

	if len(m.progressLog) != ProgressLogLines {
		t.Errorf("progress log holds %d entries, want %d", len(m.progressLog), ProgressLogLines)
	}

	if m.progressLog[len(m.progressLog)-1].Index != ProgressLogLines+2 {
		t.Error("progress log should keep the newest entries")
	}
}

func TestListState_Move(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start      listState
		delta      int
		n          int
		visible    int
		wantCursor int
		wantOffset int
	}{
		{"down within window", listState{}, 1, 10, 5, 1, 0},
		{"down scrolls", listState{cursor: 4}, 1, 10, 5, 5, 1},
		{"up scrolls", listState{cursor: 3, offset: 3}, -1, 10, 5, 2, 2},
		{"clamped at end", listState{cursor: 9, offset: 5}, 1, 10, 5, 9, 5},
		{"clamped at start", listState{}, -1, 10, 5, 0, 0},
		{"empty list", listState{cursor: 3, offset: 2}, 1, 0, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := tt.start
			l.move(tt.delta, tt.n, tt.visible)

			if l.cursor != tt.wantCursor || l.offset != tt.wantOffset {
				t.Errorf("move() = {%d %d}, want {%d %d}", l.cursor, l.offset, tt.wantCursor, tt.wantOffset)
			}
		})
	}
}

func TestRenderScrollIndicators(t *testing.T) {
	t.Parallel()

	top, bottom := RenderScrollIndicators(0, 5, 5)
	if top != "" || bottom != "" {
		t.Errorf("nothing hidden, got %q %q", top, bottom)
	}

	top, bottom = RenderScrollIndicators(2, 5, 9)
	if !strings.Contains(top, "↑ 2 more") || !strings.Contains(bottom, "↓ 4 more") {
		t.Errorf("got %q %q", top, bottom)
	}
}
