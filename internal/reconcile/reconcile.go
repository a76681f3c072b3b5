// Package reconcile compares a desired package list against the installed
// packages and decides which entries may be selected for installation.
package reconcile

import "github.com/AntoineGS/tidybrew/internal/pkgset"

// Entry is one package in a selection dialog. Locked entries (already
// installed) can never be selected.
type Entry struct {
	Name             string
	AlreadyInstalled bool
	Selectable       bool
	Selected         bool
}

// Label returns the display text for the entry.
func (e Entry) Label() string {
	if e.AlreadyInstalled {
		return e.Name + " (already installed)"
	}

	return e.Name
}

// Reconcile returns one entry per desired identifier, sorted ascending.
// Entries not yet installed start selected.
func Reconcile(desired, installed pkgset.Set) []Entry {
	names := desired.Sorted()

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, newEntry(name, installed, true))
	}

	return entries
}

// FromNames builds entries for a search result. It keeps the given order,
// drops duplicates, and starts every entry unselected.
func FromNames(names []string, installed pkgset.Set) []Entry {
	names = pkgset.Unique(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, newEntry(name, installed, false))
	}

	return entries
}

func newEntry(name string, installed pkgset.Set, preselect bool) Entry {
	already := installed.Has(name)

	return Entry{
		Name:             name,
		AlreadyInstalled: already,
		Selectable:       !already,
		Selected:         !already && preselect,
	}
}

// Toggle flips the selection of entries[i]. It returns false and leaves the
// entry untouched when i is out of range or the entry is locked.
func Toggle(entries []Entry, i int) bool {
	if i < 0 || i >= len(entries) || !entries[i].Selectable {
		return false
	}

	entries[i].Selected = !entries[i].Selected

	return true
}

// SetAll selects or clears every selectable entry.
func SetAll(entries []Entry, selected bool) {
	for i := range entries {
		if entries[i].Selectable {
			entries[i].Selected = selected
		}
	}
}

// Selection returns the names that are both selectable and selected, in
// entry order. Locked entries are filtered here even if their Selected flag
// was set by hand.
func Selection(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Selectable && !e.AlreadyInstalled && e.Selected {
			out = append(out, e.Name)
		}
	}

	return out
}

// Counts returns how many entries are selectable and how many are locked.
func Counts(entries []Entry) (selectable, locked int) {
	for _, e := range entries {
		if e.Selectable {
			selectable++
		} else {
			locked++
		}
	}

	return selectable, locked
}
