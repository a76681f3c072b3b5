package brew

import (
	"errors"
	"fmt"
)

// Sentinel errors for brew invocations
var (
	ErrToolFailed   = errors.New("brew command failed")
	ErrLaunchFailed = errors.New("brew could not be launched")
)

// ToolError records a failed brew invocation. Every ToolError matches
// ErrToolFailed with errors.Is, whatever the underlying cause.
type ToolError struct {
	Err      error
	Op       Op
	Package  string
	Detail   string // diagnostic text shown to the user
	ExitCode int    // -1 when the process never exited normally
}

func (e *ToolError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("brew %s %s: %v", e.Op, e.Package, e.Err)
	}

	return fmt.Sprintf("brew %s: %v", e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is reports ErrToolFailed as a match for every ToolError.
func (e *ToolError) Is(target error) bool {
	return target == ErrToolFailed
}

// NewToolError creates a new ToolError
func NewToolError(op Op, pkg, detail string, exitCode int, err error) *ToolError {
	return &ToolError{
		Op:       op,
		Package:  pkg,
		Detail:   detail,
		ExitCode: exitCode,
		Err:      err,
	}
}

// DetailOf returns the user-facing diagnostic for err. For a ToolError this
// is its Detail; otherwise the error text.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}

	var te *ToolError
	if errors.As(err, &te) && te.Detail != "" {
		return te.Detail
	}

	return err.Error()
}
