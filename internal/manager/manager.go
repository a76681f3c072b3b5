// Package manager is the entry point the CLI and TUI use to query brew,
// reconcile package lists, and submit batches.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
	"github.com/AntoineGS/tidybrew/internal/platform"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
)

// progressBuffer is how many progress events may queue before new ones are
// dropped.
const progressBuffer = 64

// Brew is the subset of *brew.Client the manager needs.
type Brew interface {
	batch.Runner
	ListInstalled(ctx context.Context) brew.Installed
	Search(ctx context.Context, query string) []string
}

var _ Brew = (*brew.Client)(nil)

// Manager ties the brew client to a single batch executor. Copies made by
// WithLogger share the executor, so at most one batch runs per Manager.
type Manager struct {
	brew     Brew
	executor *batch.Executor
	history  *recorder
	progress chan batch.Progress
	Platform *platform.Platform
	logger   *slog.Logger
}

// New creates a Manager for client on plat.
func New(client Brew, plat *platform.Platform) *Manager {
	m := &Manager{
		brew:     client,
		history:  &recorder{},
		progress: make(chan batch.Progress, progressBuffer),
		Platform: plat,
		logger:   slog.Default(),
	}

	if plat != nil {
		m.history.host = plat.Hostname
	}

	m.executor = batch.NewExecutor(client,
		batch.WithLogger(m.logger),
		batch.WithProgress(m.publishProgress),
		batch.WithCompletionHook(m.history.record),
	)

	return m
}

// WithLogger sets a custom logger. The copy still shares the executor, and
// its batches are logged to logger.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m2 := *m
	m2.logger = logger

	return &m2
}

// Progress returns the stream of per-package progress events. Events are
// dropped when nobody reads them.
func (m *Manager) Progress() <-chan batch.Progress {
	return m.progress
}

func (m *Manager) publishProgress(p batch.Progress) {
	select {
	case m.progress <- p:
	default:
	}
}

// Busy reports whether a batch is running.
func (m *Manager) Busy() bool {
	return m.executor.Busy()
}

// Refresh queries brew for the installed packages. Nothing is cached.
func (m *Manager) Refresh(ctx context.Context) brew.Installed {
	installed := m.brew.ListInstalled(ctx)

	m.logger.Debug("refreshed installed packages",
		slog.Int("casks", len(installed.Casks)),
		slog.Int("formulae", len(installed.Formulae)))

	return installed
}

// Search runs brew search and marks results that are already installed.
// Results keep brew's order and start unselected.
func (m *Manager) Search(ctx context.Context, query string) []reconcile.Entry {
	names := m.brew.Search(ctx, query)
	if len(names) == 0 {
		return []reconcile.Entry{}
	}

	installed := m.Refresh(ctx)

	return reconcile.FromNames(names, installed.Set())
}

// Import loads the package list at path and reconciles it against a fresh
// installed snapshot. A malformed file returns an error wrapping
// ErrMalformedImport and no Session.
func (m *Manager) Import(ctx context.Context, path string) (*Session, error) {
	doc, err := pkglist.Load(path)
	if err != nil {
		m.logger.Warn("import failed",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return nil, err
	}

	installed := m.Refresh(ctx)
	entries := reconcile.Reconcile(doc.Desired(), installed.Set())

	selectable, locked := reconcile.Counts(entries)
	m.logger.Info("imported package list",
		slog.String("path", path),
		slog.Int("selectable", selectable),
		slog.Int("already_installed", locked))

	return &Session{m: m, Source: path, entries: entries}, nil
}

// Export writes the live installed packages to path and returns what was
// written.
func (m *Manager) Export(ctx context.Context, path string) (*pkglist.Document, error) {
	doc := pkglist.FromInstalled(m.Refresh(ctx))

	if err := pkglist.Save(path, doc); err != nil {
		return nil, fmt.Errorf("exporting to %s: %w", path, err)
	}

	m.logger.Info("exported package list",
		slog.String("path", path),
		slog.Int("casks", len(doc.Cask)),
		slog.Int("formulae", len(doc.Formula)))

	return doc, nil
}

// ExportDiff returns a line diff between the file at path and what Export
// would write there now. A missing file diffs against nothing.
func (m *Manager) ExportDiff(ctx context.Context, path string) (string, error) {
	next, err := pkglist.Marshal(pkglist.FromInstalled(m.Refresh(ctx)))
	if err != nil {
		return "", err
	}

	previous, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return pkglist.Diff(previous, next), nil
}

// SubmitBatch starts op over names in the background. The channel delivers
// one Result. No names returns ErrNoSelection without contacting the
// executor; a running batch returns ErrBusy.
func (m *Manager) SubmitBatch(ctx context.Context, op batch.Operation, names []string) (<-chan batch.Result, error) {
	if len(names) == 0 {
		m.logger.Info("batch skipped, nothing selected", slog.String("op", op.String()))
		return nil, ErrNoSelection
	}

	return m.executor.SubmitWithLogger(ctx, m.logger, op, names)
}
