package tui

import (
	"fmt"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/reconcile"
	"github.com/charmbracelet/lipgloss"
)

// listState is the cursor and scroll offset of one checkbox list.
type listState struct {
	cursor int
	offset int
}

// move shifts the cursor by delta, clamped to n entries, and scrolls so the
// cursor stays inside a window of visible rows.
func (l *listState) move(delta, n, visible int) {
	if n == 0 {
		l.cursor, l.offset = 0, 0
		return
	}

	l.cursor = max(0, min(n-1, l.cursor+delta))
	l.clamp(n, visible)
}

func (l *listState) clamp(n, visible int) {
	if l.cursor >= n {
		l.cursor = max(0, n-1)
	}

	if l.cursor < l.offset {
		l.offset = l.cursor
	}

	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}

	l.offset = max(0, min(l.offset, n-visible))
}

// window returns the half-open range of rows to draw.
func (l listState) window(n, visible int) (start, end int) {
	start = max(0, min(l.offset, n-visible))
	end = min(n, start+visible)

	return start, end
}

// RenderScrollIndicators returns the lines shown above and below a
// scrolled list. Either is empty when nothing is hidden on that side.
func RenderScrollIndicators(start, end, total int) (top, bottom string) {
	if start > 0 {
		top = MutedTextStyle.Render(fmt.Sprintf("  ↑ %d more", start)) + "\n"
	}

	if end < total {
		bottom = MutedTextStyle.Render(fmt.Sprintf("  ↓ %d more", total-end)) + "\n"
	}

	return top, bottom
}

func renderCheckbox(e reconcile.Entry) string {
	switch {
	case !e.Selectable:
		return MutedTextStyle.Render(CheckboxLocked)
	case e.Selected:
		return CheckedStyle.Render(CheckboxChecked)
	default:
		return UncheckedStyle.Render(CheckboxUnchecked)
	}
}

// renderChecklist draws entries with a cursor column and checkboxes. When
// tags is non-nil each row is followed by its tag in an aligned column.
func renderChecklist(entries []reconcile.Entry, l listState, visible int, tags map[string]string) string {
	var b strings.Builder

	start, end := l.window(len(entries), visible)
	top, bottom := RenderScrollIndicators(start, end, len(entries))

	width := 0
	if tags != nil {
		for _, e := range entries[start:end] {
			width = max(width, lipgloss.Width(e.Label()))
		}
	}

	b.WriteString(top)

	for i := start; i < end; i++ {
		e := entries[i]
		label := e.Label()

		styled := label
		switch {
		case i == l.cursor:
			styled = SelectedListItemStyle.Render(label)
		case e.AlreadyInstalled:
			styled = MutedTextStyle.Render(label)
		}

		b.WriteString(RenderCursor(i == l.cursor))
		b.WriteString(renderCheckbox(e))
		b.WriteString(" ")
		b.WriteString(styled)

		if tags != nil {
			b.WriteString(strings.Repeat(" ", width-lipgloss.Width(label)+2))
			b.WriteString(CategoryTagStyle.Render(tags[e.Name]))
		}

		b.WriteString("\n")
	}

	b.WriteString(bottom)

	return b.String()
}
