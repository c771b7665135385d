package editor

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the editor bindings. Input-mode and chip-mode bindings
// share keys, so Update checks the mode before matching.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Commit  key.Binding
	Dismiss key.Binding

	ChipLeft   key.Binding
	ChipRight  key.Binding
	ChipDelete key.Binding
	Refocus    key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "prev suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next suggestion"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter", "insert variable"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / edit chips"),
		),
		ChipLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev chip"),
		),
		ChipRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next chip"),
		),
		ChipDelete: key.NewBinding(
			key.WithKeys("backspace", "delete", "x"),
			key.WithHelp("x", "remove chip"),
		),
		Refocus: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("i", "edit formula"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// inputHelp is the footer while typing.
type inputHelp struct{ keyMap }

func (k inputHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Commit, k.Dismiss, k.Help, k.Quit}
}

func (k inputHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// chipHelp is the footer in chip mode.
type chipHelp struct{ keyMap }

func (k chipHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.ChipLeft, k.ChipRight, k.ChipDelete, k.Refocus, k.Help, k.Quit}
}

func (k chipHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
