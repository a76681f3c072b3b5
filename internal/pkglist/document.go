// Package pkglist reads and writes the JSON package list used by import and
// export:
//
//	{
//	  "cask": ["firefox"],
//	  "formula": ["wget"]
//	}
package pkglist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/pkgset"
)

// Document is a package list split by category. Names may repeat.
type Document struct {
	Cask    []string `json:"cask"`
	Formula []string `json:"formula"`
}

// Parse decodes a package list. Missing arrays become empty and unknown
// fields are ignored. Anything that is not an object of string arrays,
// including empty input, is an *ImportError wrapping ErrMalformed.
func Parse(data []byte) (*Document, error) {
	return parse("", data)
}

func parse(path string, data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed(path, errors.New("file is empty"))
	}

	if trimmed[0] != '{' {
		return nil, malformed(path, errors.New("top level must be an object"))
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, malformed(path, err)
	}

	doc.normalize()

	return &doc, nil
}

// Load reads and parses the package list at path. A read failure is an
// *ImportError that does not wrap ErrMalformed.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return nil, NewImportError(path, err)
	}

	return parse(path, data)
}

// FromInstalled builds a document from the live installed sets.
func FromInstalled(in brew.Installed) *Document {
	doc := &Document{
		Cask:    append([]string(nil), in.Casks...),
		Formula: append([]string(nil), in.Formulae...),
	}
	doc.normalize()

	return doc
}

// Desired returns the union of both categories.
func (d *Document) Desired() pkgset.Set {
	return pkgset.New(d.Cask...).Union(pkgset.New(d.Formula...))
}

// Len returns the number of entries across both categories, repeats
// included.
func (d *Document) Len() int {
	return len(d.Cask) + len(d.Formula)
}

func (d *Document) normalize() {
	if d.Cask == nil {
		d.Cask = []string{}
	}

	if d.Formula == nil {
		d.Formula = []string{}
	}
}

// Marshal encodes doc with 2-space indentation and a trailing newline.
// Empty categories are written as [].
func Marshal(doc *Document) ([]byte, error) {
	out := Document{Cask: doc.Cask, Formula: doc.Formula}
	out.normalize()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding package list: %w", err)
	}

	return append(data, '\n'), nil
}

// Save writes doc to path. The file is replaced atomically so a failed
// export never leaves a truncated list behind.
func Save(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, ".tidybrew-export-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)

		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmp, 0o644); err != nil { //nolint:gosec // package list is not secret
		_ = os.Remove(tmp)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
