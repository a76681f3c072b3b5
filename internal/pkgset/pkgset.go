// Package pkgset provides a set of Homebrew package identifiers.
package pkgset

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Set is an unordered collection of package identifiers.
// The zero value is not usable; create sets with New.
type Set map[string]struct{}

// New returns a Set holding the given names. Blank names are skipped.
func New(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}

	return s
}

// Add inserts name into the set. Names are trimmed; blank names are ignored.
func (s Set) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set holding every identifier of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}

	for n := range other {
		out[n] = struct{}{}
	}

	return out
}

// Sorted returns the identifiers in ascending lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// Unique returns names with blanks and repeats removed, keeping the first
// occurrence of each. The input slice is not modified.
func Unique(names []string) []string {
	seen := make(Set, len(names))

	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen.Has(n) {
			continue
		}

		seen.Add(n)
		out = append(out, n)
	}

	return out
}

// Filter returns the names that fuzzy-match pattern, best match first. An
// empty pattern returns names unchanged.
func Filter(pattern string, names []string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return names
	}

	matches := fuzzy.Find(pattern, names)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, names[m.Index])
	}

	return out
}
