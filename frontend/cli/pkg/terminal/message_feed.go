package terminal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	v1 "github.com/furisto/taskview/api/go/v1"
)

type MessageFeedKeyMap struct {
	PageUp   key.Binding
	PageDown key.Binding
}

var messageKeys = MessageFeedKeyMap{
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+p")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+n")),
}

// MessageFeed shows the conversation of a task and tracks which message is
// selected for copy and retry.
type MessageFeed struct {
	width    int
	height   int
	viewport viewport.Model
	messages []v1.TaskMessage
	selected int

	context MessageContext
	copied  func(messageID string) bool
	loading func() bool
}

var _ tea.Model = (*MessageFeed)(nil)

// NewMessageFeed creates a feed. copied reports the copy indicator of a
// message and loading whether the first load is still pending; both may be nil.
func NewMessageFeed(copied func(messageID string) bool, loading func() bool) *MessageFeed {
	if copied == nil {
		copied = func(string) bool { return false }
	}
	if loading == nil {
		loading = func() bool { return false }
	}
	return &MessageFeed{
		viewport: viewport.New(0, 0),
		selected: -1,
		copied:   copied,
		loading:  loading,
	}
}

func (m *MessageFeed) Init() tea.Cmd {
	return nil
}

func (m *MessageFeed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if !key.Matches(msg, messageKeys.PageUp) && !key.Matches(msg, messageKeys.PageDown) {
			return m, nil
		}
	}

	u, cmd := m.viewport.Update(msg)
	m.viewport = u
	return m, cmd
}

func (m *MessageFeed) View() string {
	if len(m.messages) == 0 {
		placeholder := "No messages yet. Type below to continue the task."
		if m.loading() {
			placeholder = "Loading messages..."
		}
		return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(subtleStyle.Render(placeholder))
	}
	return m.viewport.View()
}

func (m *MessageFeed) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.render(false)
}

// SetMessages replaces the shown conversation. The view only jumps to the
// newest message when scrollToLatest is set.
func (m *MessageFeed) SetMessages(messages []v1.TaskMessage, mc MessageContext, scrollToLatest bool) {
	m.messages = messages
	m.context = mc
	if m.selected >= len(messages) {
		m.selected = len(messages) - 1
	}
	m.render(scrollToLatest)
}

// SetContext refreshes derived values such as the live timer without moving
// the view.
func (m *MessageFeed) SetContext(mc MessageContext) {
	m.context = mc
	m.render(false)
}

func (m *MessageFeed) SelectPrevious() {
	switch {
	case len(m.messages) == 0:
		return
	case m.selected < 0:
		m.selected = len(m.messages) - 1
	case m.selected > 0:
		m.selected--
	}
	m.render(false)
}

func (m *MessageFeed) SelectNext() {
	if len(m.messages) == 0 {
		return
	}
	if m.selected < len(m.messages)-1 {
		m.selected++
	}
	m.render(false)
}

func (m *MessageFeed) Selected() (v1.TaskMessage, bool) {
	if m.selected < 0 || m.selected >= len(m.messages) {
		return v1.TaskMessage{}, false
	}
	return m.messages[m.selected], true
}

func (m *MessageFeed) Refresh() {
	m.render(false)
}

func (m *MessageFeed) render(scrollToLatest bool) {
	if m.width <= 0 {
		return
	}

	blocks := make([]string, 0, len(m.messages))
	for i, msg := range m.messages {
		blocks = append(blocks, RenderMessage(msg, m.context, m.copied(msg.ID), i == m.selected, m.width))
	}

	offset := m.viewport.YOffset
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	if scrollToLatest {
		m.viewport.GotoBottom()
	} else {
		m.viewport.SetYOffset(offset)
	}
}
