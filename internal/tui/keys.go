package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the bindings that are not plain calculator characters.
type KeyMap struct {
	Equals    key.Binding
	Backspace key.Binding
	Clear     key.Binding
	Negate    key.Binding
	Percent   key.Binding
	Quit      key.Binding
}

// DefaultKeyMap mirrors a desktop calculator: digits, point and operators
// type themselves, Enter or = evaluates, Esc clears.
var DefaultKeyMap = KeyMap{
	Equals: key.NewBinding(
		key.WithKeys("enter", "="),
		key.WithHelp("enter/=", "equals"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("⌫", "delete"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc/c", "clear"),
	),
	Negate: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "±"),
	),
	Percent: key.NewBinding(
		key.WithKeys("%"),
		key.WithHelp("%", "percent"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Equals, k.Backspace, k.Clear, k.Negate, k.Percent, k.Quit}
}

// Token translates a key press into a calculator token. ok is false for
// keys the calculator ignores.
func (k KeyMap) Token(msg tea.KeyMsg) (token string, ok bool) {
	switch {
	case key.Matches(msg, k.Equals):
		return "=", true
	case key.Matches(msg, k.Backspace):
		return "Backspace", true
	case key.Matches(msg, k.Clear):
		return "clear", true
	case key.Matches(msg, k.Negate):
		return "negate", true
	case key.Matches(msg, k.Percent):
		return "percent", true
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return "", false
	}
	switch r := msg.Runes[0]; {
	case r >= '0' && r <= '9', r == '.', r == '+', r == '-', r == '*', r == '/':
		return string(r), true
	}
	return "", false
}
