package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#F59E0B") // Amber
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#FBBF24") // Yellow
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray

	// Base styles
	BaseStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			MarginBottom(1)

	// Inline muted text (no margins, for use within lines)
	MutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// List styles. Rows carry their own cursor column, so no padding here.
	SelectedListItemStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	UncheckedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	CategoryTagStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	// Progress styles
	ProgressStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Help styles
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	// Spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)
)

// RenderHelp renders alternating key/description pairs as a help line.
func RenderHelp(keys ...string) string {
	var result strings.Builder

	for i := 0; i < len(keys); i += 2 {
		if i > 0 {
			result.WriteString("  ")
		}

		desc := ""
		if i+1 < len(keys) {
			desc = keys[i+1]
		}

		result.WriteString(HelpKeyStyle.Render(keys[i]) + " " + desc)
	}

	return HelpStyle.Render(result.String())
}

// RenderBindings renders the help text of each binding.
func RenderBindings(bindings ...key.Binding) string {
	keys := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		h := b.Help()
		keys = append(keys, h.Key, h.Desc)
	}

	return RenderHelp(keys...)
}

// RenderCursor returns the cursor column for a list row.
func RenderCursor(selected bool) string {
	if selected {
		return SelectedListItemStyle.Render(CursorMarker)
	}

	return strings.Repeat(" ", lipgloss.Width(CursorMarker))
}
