package batch

import "errors"

// Sentinel errors for batch operations
var (
	ErrBusy             = errors.New("a batch is already running")
	ErrUnknownOperation = errors.New("unknown batch operation")
	ErrRunnerPanic      = errors.New("package operation panicked")
	ErrInvalidName      = errors.New("invalid package name")
)
