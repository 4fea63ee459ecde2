package terminal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/browser"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
	"github.com/furisto/taskview/shared/event"
)

const timerInterval = time.Second

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		textinput.Blink,
		m.startPolling(),
		waitForRefresh(m.refreshed),
		tickTimer(),
		m.maybeFetchFiles(),
	)
}

func (m *model) startPolling() tea.Cmd {
	return func() tea.Msg {
		m.session.Poller.Start(m.ctx)
		return nil
	}
}

// waitForRefresh bridges refresh events from the bus into the program.
func waitForRefresh(ch <-chan event.MessagesRefreshed) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return messagesRefreshedMsg(e)
	}
}

func tickTimer() tea.Cmd {
	return tea.Tick(timerInterval, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func (m *model) branchRef() string {
	if m.task == nil {
		return ""
	}
	return m.task.BranchName
}

func (m *model) maybeFetchFiles() tea.Cmd {
	branch, mode := m.branchRef(), m.mode
	return func() tea.Msg {
		fetched, err := m.session.Files.MaybeFetch(m.ctx, branch, mode)
		if !fetched && err == nil {
			return nil
		}
		return filesFetchedMsg{mode: mode, err: err}
	}
}

func (m *model) refreshFiles() tea.Cmd {
	m.refreshKey++
	branch, mode, refreshKey := m.branchRef(), m.mode, m.refreshKey
	return func() tea.Msg {
		_, err := m.session.Files.Refresh(m.ctx, branch, mode, refreshKey)
		return filesFetchedMsg{mode: mode, err: err}
	}
}

func (m *model) loadTask() tea.Cmd {
	taskID := m.task.ID
	return func() tea.Msg {
		resp, err := m.session.Client.GetTask(m.ctx, taskID)
		if err != nil {
			return taskLoadedMsg{err: err}
		}
		if !resp.Success || resp.Task == nil {
			return taskLoadedMsg{err: errors.New(resp.Error)}
		}
		return taskLoadedMsg{task: resp.Task}
	}
}

func (m *model) messageContext() MessageContext {
	return MessageContext{
		Messages: m.session.Messages.Messages(),
		Task:     m.task,
		Now:      m.now,
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, watchKeys.Quit) {
			m.sub.Unsubscribe()
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKeyEvents(msg))

	case tea.WindowSizeMsg:
		m.handleWindowResizeEvent(msg)

	case messagesRefreshedMsg:
		mc := m.messageContext()
		m.feed.SetMessages(mc.Messages, mc, msg.ScrollToLatest)
		cmds = append(cmds, waitForRefresh(m.refreshed), m.loadTask())

	case taskLoadedMsg:
		if msg.err != nil {
			slog.Debug("failed to load task", "task_id", m.task.ID, "error", msg.err)
			break
		}
		hadBranch := m.branchRef() != ""
		m.task = msg.task
		m.feed.SetContext(m.messageContext())
		if !hadBranch && m.branchRef() != "" {
			cmds = append(cmds, m.maybeFetchFiles())
		}

	case filesFetchedMsg:
		if msg.err != nil {
			slog.Debug("file fetch finished with error", "mode", msg.mode, "error", msg.err)
		}
		m.clampCursor()
		// the shown mode may have been switched to while this fetch held the guard
		cmds = append(cmds, m.maybeFetchFiles())

	case timerTickMsg:
		m.now = time.Time(msg)
		m.feed.SetContext(m.messageContext())
		cmds = append(cmds, tickTimer())

	case sendFinishedMsg:
		m.handleSendFinished(msg)

	case copyFadedMsg:
		m.feed.Refresh()
	}

	if m.focus == paneInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.focus == paneMessages {
		_, cmd := m.feed.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKeyEvents(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, watchKeys.NextPane) {
		m.focus = (m.focus + 1) % 3
		if m.focus == paneInput {
			return m.textInput.Focus()
		}
		m.textInput.Blur()
		return nil
	}

	switch m.focus {
	case paneFiles:
		return m.handleFilesKeys(msg)
	case paneMessages:
		return m.handleMessagesKeys(msg)
	case paneInput:
		if key.Matches(msg, watchKeys.Send) {
			return m.send()
		}
	}
	return nil
}

func (m *model) handleFilesKeys(msg tea.KeyMsg) tea.Cmd {
	rows := m.visibleRows()

	switch {
	case key.Matches(msg, watchKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, watchKeys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, watchKeys.Toggle):
		if m.cursor >= len(rows) {
			return nil
		}
		row := rows[m.cursor]
		if row.IsDir() {
			m.session.Files.ToggleFolder(m.mode, row.Path)
			return nil
		}
		event.Publish(m.session.Bus, event.FileSelected{TaskID: m.task.ID, Filename: row.Path})
	case key.Matches(msg, watchKeys.SwitchMode):
		m.mode = m.mode.Other()
		m.cursor = 0
		event.Publish(m.session.Bus, event.ViewModeChanged{TaskID: m.task.ID, Mode: m.mode})
		return m.maybeFetchFiles()
	case key.Matches(msg, watchKeys.Refresh):
		return m.refreshFiles()
	}
	return nil
}

func (m *model) handleMessagesKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, watchKeys.Up):
		m.feed.SelectPrevious()
	case key.Matches(msg, watchKeys.Down):
		m.feed.SelectNext()
	case key.Matches(msg, watchKeys.Copy):
		selected, ok := m.feed.Selected()
		if !ok {
			return nil
		}
		m.session.Composer.Copy(selected.ID, conversation.DisplayContent(selected))
		m.feed.Refresh()
		return tea.Tick(conversation.CopiedResetDelay+50*time.Millisecond, func(time.Time) tea.Msg {
			return copyFadedMsg{}
		})
	case key.Matches(msg, watchKeys.Retry):
		selected, ok := m.feed.Selected()
		if !ok || selected.Role != v1.MessageRoleUser || m.session.Composer.Sending() {
			return nil
		}
		content := selected.Content
		return func() tea.Msg {
			return sendFinishedMsg{err: m.session.Composer.Retry(m.ctx, content), retry: true}
		}
	}
	return nil
}

func (m *model) send() tea.Cmd {
	content := m.textInput.Value()
	if strings.TrimSpace(content) == "" || m.session.Composer.Sending() {
		return nil
	}

	m.session.Composer.SetDraft(content)
	m.textInput.Reset()
	m.notice = ""

	return func() tea.Msg {
		return sendFinishedMsg{err: m.session.Composer.Send(m.ctx, content)}
	}
}

func (m *model) handleSendFinished(msg sendFinishedMsg) {
	switch {
	case msg.err == nil:
		m.notice = ""
	case errors.Is(msg.err, conversation.ErrSendInProgress), errors.Is(msg.err, conversation.ErrEmptyMessage):
	default:
		m.notice = fmt.Sprintf("%s Failed to send message: %v", WarningSymbol, msg.err)
		if !msg.retry {
			m.textInput.SetValue(m.session.Composer.Draft())
			m.textInput.CursorEnd()
		}
	}
}

func (m *model) handleWindowResizeEvent(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	_, feedWidth := m.paneWidths()
	m.feed.SetSize(feedWidth-paneStyle.GetHorizontalFrameSize(), m.paneHeight()-paneStyle.GetVerticalFrameSize())
	m.textInput.Width = msg.Width - 6
}

func (m *model) paneWidths() (int, int) {
	inner := m.width - appStyle.GetHorizontalFrameSize()
	files := inner * 2 / 5
	return files, inner - files
}

func (m *model) paneHeight() int {
	// title, notice, input and help lines
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) modeState() (browser.State, browser.PerModeState) {
	state := m.session.Files.State()
	return state, state.Mode(m.mode)
}

func (m *model) visibleRows() []filetree.Row {
	_, ms := m.modeState()
	return filetree.Visible(ms.FileTree, ms.ExpandedFolders.Has)
}

func (m *model) clampCursor() {
	rows := m.visibleRows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) View() string {
	if m.height == 0 {
		return "Loading..."
	}

	var sb strings.Builder

	status := ""
	if m.task != nil {
		status = subtleStyle.Render(fmt.Sprintf(" %s · %s", m.task.ID, m.task.Status))
	}
	sb.WriteString(titleStyle.Render("taskview") + status)
	sb.WriteString("\n")

	filesWidth, feedWidth := m.paneWidths()
	height := m.paneHeight()

	filesPane := paneStyle
	feedPane := paneStyle
	switch m.focus {
	case paneFiles:
		filesPane = focusedPaneStyle
	case paneMessages:
		feedPane = focusedPaneStyle
	}

	files := filesPane.
		Width(filesWidth - paneStyle.GetHorizontalFrameSize()).
		Height(height - paneStyle.GetVerticalFrameSize()).
		Render(m.renderFiles(height - paneStyle.GetVerticalFrameSize()))
	feed := feedPane.
		Width(feedWidth - paneStyle.GetHorizontalFrameSize()).
		Height(height - paneStyle.GetVerticalFrameSize()).
		Render(m.feed.View())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, files, feed))
	sb.WriteString("\n")

	if m.notice != "" {
		sb.WriteString(noticeStyle.Render(m.notice))
	}
	sb.WriteString("\n")

	prompt := subtleStyle.Render("> ")
	if m.session.Composer.Sending() {
		prompt = subtleStyle.Render("… ")
	}
	sb.WriteString(prompt + inputStyle.Render(m.textInput.View()))
	sb.WriteString("\n")
	sb.WriteString(m.help.ShortHelpView(watchKeys.helpFor(m.focus)))

	return appStyle.Render(sb.String())
}

func (m *model) renderFiles(height int) string {
	state, ms := m.modeState()

	header := "changes  " + subtleStyle.Render("all")
	if m.mode == v1.ViewModeAll {
		header = subtleStyle.Render("changes") + "  all"
	}
	lines := []string{header}

	switch {
	case m.branchRef() == "":
		lines = append(lines, subtleStyle.Render("No branch yet."))
	case state.Loading && len(ms.Files) == 0:
		lines = append(lines, subtleStyle.Render("Loading files..."))
	case state.Error != "":
		lines = append(lines, errorStyle.Render(state.Error), subtleStyle.Render("Press r to retry."))
	case len(ms.Files) == 0 && ms.FetchAttempted:
		lines = append(lines, subtleStyle.Render("No files."))
	default:
		rows := filetree.Visible(ms.FileTree, ms.ExpandedFolders.Has)
		start := 0
		if visible := height - 1; visible > 0 && m.cursor >= visible {
			start = m.cursor - visible + 1
		}
		for i := start; i < len(rows) && len(lines) < height; i++ {
			row := rows[i]
			line := FormatRow(row, row.IsDir() && ms.ExpandedFolders.Has(row.Path))
			if i == m.cursor && m.focus == paneFiles {
				line = cursorStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// Run starts the watch view and blocks until the user quits.
func Run(m *model, options ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, options...).Run()
	return err
}
