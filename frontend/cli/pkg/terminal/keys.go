package terminal

import "github.com/charmbracelet/bubbles/key"

type watchKeyMap struct {
	Quit       key.Binding
	NextPane   key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	SwitchMode key.Binding
	Refresh    key.Binding
	Copy       key.Binding
	Retry      key.Binding
	Send       key.Binding
}

var watchKeys = watchKeyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c", "quit")),
	NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/select")),
	SwitchMode: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "changes/all")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	Retry:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
}

func (k watchKeyMap) helpFor(p pane) []key.Binding {
	switch p {
	case paneFiles:
		return []key.Binding{k.NextPane, k.Up, k.Down, k.Toggle, k.SwitchMode, k.Refresh, k.Quit}
	case paneMessages:
		return []key.Binding{k.NextPane, k.Up, k.Down, k.Copy, k.Retry, k.Quit}
	}
	return []key.Binding{k.NextPane, k.Send, k.Quit}
}
