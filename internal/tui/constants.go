package tui

// Layout
const (
	// DefaultHeight is used until the first WindowSizeMsg arrives.
	DefaultHeight = 24
	// DefaultWidth is used until the first WindowSizeMsg arrives.
	DefaultWidth = 80
	// ViewOverhead is the number of lines used by title, subtitle, help and padding.
	ViewOverhead = 12
	// MinVisibleRows keeps lists usable in very short terminals.
	MinVisibleRows = 3
	// ProgressLogLines is how many finished packages the progress screen shows.
	ProgressLogLines = 8
)

// List markers
const (
	CursorMarker      = "> "
	CheckboxChecked   = "[x]"
	CheckboxUnchecked = "[ ]"
	CheckboxLocked    = "[-]"
)

// Notices
const (
	MsgNoSelection = "No apps selected."
	MsgBusy        = "A batch is already running."
	MsgLoading     = "Loading installed packages..."
	MsgNoInstalled = "No packages installed."
)
