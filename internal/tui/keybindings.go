package tui

import "github.com/charmbracelet/bubbles/key"

// SharedKeyMap defines keybindings available on all screens.
type SharedKeyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
}

// SharedKeys are available on all screens.
var SharedKeys = SharedKeyMap{
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "force quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// ListKeyMap defines keybindings shared by every checkbox list.
type ListKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	SelectAll  key.Binding
	SelectNone key.Binding
	Back       key.Binding
}

// ListKeys are the keybindings for checkbox lists.
var ListKeys = ListKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all"),
	),
	SelectNone: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "none"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

// InstalledKeyMap defines keybindings for the installed packages screen.
type InstalledKeyMap struct {
	Uninstall key.Binding
	Refresh   key.Binding
	Search    key.Binding
	Import    key.Binding
	Export    key.Binding
}

// InstalledKeys are the keybindings for the installed packages screen.
var InstalledKeys = InstalledKeyMap{
	Uninstall: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "uninstall"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Search: key.NewBinding(
		key.WithKeys("/", "s"),
		key.WithHelp("/", "search"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
}

// SelectionKeyMap defines keybindings for search results and imports.
type SelectionKeyMap struct {
	Install   key.Binding
	NewSearch key.Binding
}

// SelectionKeys are the keybindings for install selections.
var SelectionKeys = SelectionKeyMap{
	Install: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "install"),
	),
	NewSearch: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "new search"),
	),
}

// InputKeyMap defines keybindings for text prompts.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// InputKeys are the keybindings for text prompts.
var InputKeys = InputKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// ResultKeyMap defines keybindings for the results screen.
type ResultKeyMap struct {
	Close key.Binding
}

// ResultKeys are the keybindings for the results screen.
var ResultKeys = ResultKeyMap{
	Close: key.NewBinding(
		key.WithKeys("enter", "esc"),
		key.WithHelp("enter", "back"),
	),
}
