package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the interview screen.
type KeyMap struct {
	Submit     key.Binding
	SubmitNow  key.Binding
	NewLine    key.Binding
	Skip       key.Binding
	Finish     key.Binding
	StartOver  key.Binding
	Resend     key.Binding
	Regenerate key.Binding
	Quit       key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "answer"),
	),
	SubmitNow: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "send now"),
	),
	NewLine: key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "new line"),
	),
	Skip: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "skip question"),
	),
	Finish: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("ctrl+f", "finish now"),
	),
	StartOver: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "start over"),
	),
	Resend: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "resend email"),
	),
	Regenerate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "regenerate summary"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
}

// interviewHelp lists the bindings shown while questions remain.
func (k KeyMap) interviewHelp() []key.Binding {
	return []key.Binding{k.Submit, k.SubmitNow, k.Skip, k.Finish, k.StartOver, k.Quit}
}

// completeHelp lists the bindings shown once the summary step has run.
func (k KeyMap) completeHelp() []key.Binding {
	return []key.Binding{k.Resend, k.Regenerate, k.StartOver, k.Quit}
}
