package manager

import (
	"errors"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
)

// Sentinel errors for manager operations
var (
	// ErrNoSelection means a batch was requested with nothing selected.
	// It is informational, not a failure.
	ErrNoSelection = errors.New("no packages selected")
	// ErrHistoryDisabled is returned by History when no store is attached.
	ErrHistoryDisabled = errors.New("batch history is disabled")
	// ErrBusy is returned while another batch is running.
	ErrBusy = batch.ErrBusy
	// ErrMalformedImport marks an import file that is not a valid package list.
	ErrMalformedImport = pkglist.ErrMalformed
)
