package manager

import (
	"context"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
)

// Session holds the reconciled entries of one import. It is not safe for
// concurrent use.
type Session struct {
	m       *Manager
	Source  string
	entries []reconcile.Entry
}

// Entries returns a copy of the reconciled entries.
func (s *Session) Entries() []reconcile.Entry {
	out := make([]reconcile.Entry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Len returns the number of entries.
func (s *Session) Len() int {
	return len(s.entries)
}

// Toggle flips the selection of entry i. Locked entries are unchanged.
func (s *Session) Toggle(i int) bool {
	return reconcile.Toggle(s.entries, i)
}

// SetAll selects or clears every selectable entry.
func (s *Session) SetAll(selected bool) {
	reconcile.SetAll(s.entries, selected)
}

// Selection returns the names that would be installed.
func (s *Session) Selection() []string {
	return reconcile.Selection(s.entries)
}

// Counts returns how many entries can be installed and how many are already
// installed.
func (s *Session) Counts() (selectable, locked int) {
	return reconcile.Counts(s.entries)
}

// SubmitInstall installs the current selection in the background.
func (s *Session) SubmitInstall(ctx context.Context) (<-chan batch.Result, error) {
	return s.m.SubmitBatch(ctx, batch.OpInstall, s.Selection())
}
