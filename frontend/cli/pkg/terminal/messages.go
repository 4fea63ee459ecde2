package terminal

import (
	"strings"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
)

// MessageContext carries what is needed to derive the display values of a
// message. They are recomputed on every render.
type MessageContext struct {
	Messages []v1.TaskMessage
	Task     *v1.Task
	Now      time.Time
}

func (c MessageContext) header(msg v1.TaskMessage, copied bool) string {
	author := "You"
	if msg.Role == v1.MessageRoleAgent {
		author = "Agent"
	}

	parts := []string{
		titleStyle.Render(author),
		subtleStyle.Render(msg.CreatedAt.Local().Format("15:04:05")),
	}
	if conversation.ShowsLiveTimer(c.Messages, msg) {
		elapsed := conversation.FormatDuration(c.Messages, msg.CreatedAt, c.Task, c.Now)
		parts = append(parts, TimerSymbol+" "+noticeStyle.Render(elapsed))
	}
	if copied {
		parts = append(parts, CopiedSymbol+" "+subtleStyle.Render("copied"))
	}
	return strings.Join(parts, " ")
}

// RenderMessage renders msg as a block of the given width.
func RenderMessage(msg v1.TaskMessage, mc MessageContext, copied, selected bool, width int) string {
	style := userMessageStyle
	if msg.Role == v1.MessageRoleAgent {
		style = agentMessageStyle
	}
	if selected {
		style = selectedMessageStyle
	}

	inner := width - style.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	body := conversation.DisplayContent(msg)
	if msg.Role == v1.MessageRoleAgent {
		body = agentMarkdown.render(body, inner)
	}

	return style.Width(inner).Render(mc.header(msg, copied) + "\n" + body)
}
