package terminal

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	api_client "github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/browser"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/shared/event"
)

// Session bundles the state holders a watch view works on. They are created
// and torn down by the caller.
type Session struct {
	Task     *v1.Task
	Mode     v1.ViewMode
	Client   api_client.TaskClient
	Bus      *event.Bus
	Files    *browser.Coordinator
	Messages *conversation.Store
	Poller   *conversation.Poller
	Composer *conversation.Composer
}

type pane int

const (
	paneFiles pane = iota
	paneMessages
	paneInput
)

type model struct {
	ctx     context.Context
	session Session

	feed      *MessageFeed
	textInput textinput.Model
	help      help.Model

	width  int
	height int

	task       *v1.Task
	mode       v1.ViewMode
	refreshKey uint64
	cursor     int
	focus      pane
	notice     string
	now        time.Time

	refreshed <-chan event.MessagesRefreshed
	sub       *event.Subscription
}

func NewModel(ctx context.Context, session Session) *model {
	ti := textinput.New()
	ti.Placeholder = "Continue the task..."
	ti.CharLimit = 4096
	ti.Width = 80

	mode := session.Mode
	if mode == "" {
		mode = v1.ViewModeChanges
	}

	refreshed, sub := event.SubscribeChannel(session.Bus, 16, func(e event.MessagesRefreshed) bool {
		return e.TaskID == session.Task.ID
	})

	return &model{
		ctx:       ctx,
		session:   session,
		feed:      NewMessageFeed(session.Composer.Copied, session.Messages.Loading),
		textInput: ti,
		help:      help.New(),
		task:      session.Task,
		mode:      mode,
		focus:     paneFiles,
		now:       time.Now(),
		refreshed: refreshed,
		sub:       sub,
	}
}

type (
	messagesRefreshedMsg event.MessagesRefreshed
	taskLoadedMsg        struct {
		task *v1.Task
		err  error
	}
	filesFetchedMsg struct {
		mode v1.ViewMode
		err  error
	}
	timerTickMsg    time.Time
	sendFinishedMsg struct {
		err   error
		retry bool
	}
	copyFadedMsg struct{}
)

var _ tea.Model = (*model)(nil)
