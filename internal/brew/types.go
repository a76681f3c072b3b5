// Package brew wraps the Homebrew command-line binary.
package brew

import "github.com/AntoineGS/tidybrew/internal/pkgset"

// Category is one of the two Homebrew package kinds.
type Category string

// Homebrew package categories.
const (
	// Cask is a GUI application
	Cask Category = "cask"
	// Formula is a command-line tool
	Formula Category = "formula"
)

// Installed is a live snapshot of installed packages, split by category.
// It is rebuilt from brew on every query and never cached.
type Installed struct {
	Casks    []string
	Formulae []string
}

// Set returns the union of both categories.
func (i Installed) Set() pkgset.Set {
	return pkgset.New(i.Casks...).Union(pkgset.New(i.Formulae...))
}

// All returns every installed identifier from both categories, sorted and deduplicated.
func (i Installed) All() []string {
	return i.Set().Sorted()
}

// Count returns the number of distinct installed identifiers.
func (i Installed) Count() int {
	return i.Set().Len()
}
