package pkglist

import (
	"errors"
	"fmt"
)

// ErrMalformed marks a package list that is not a JSON object with two
// string arrays.
var ErrMalformed = errors.New("malformed package list")

// ImportError reports a package list that could not be read or parsed.
type ImportError struct {
	Err  error
	Path string // empty when parsing raw bytes
}

func (e *ImportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("import: %v", e.Err)
	}

	return fmt.Sprintf("import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError
func NewImportError(path string, err error) *ImportError {
	return &ImportError{Path: path, Err: err}
}

func malformed(path string, cause error) *ImportError {
	if cause == nil {
		return NewImportError(path, ErrMalformed)
	}

	return NewImportError(path, fmt.Errorf("%w: %v", ErrMalformed, cause))
}
