package cmd

import (
	"fmt"
	"io"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
	"github.com/spf13/cobra"
)

type messagesOptions struct {
	Width         int
	RenderOptions RenderOptions
}

func NewMessagesCmd() *cobra.Command {
	options := messagesOptions{
		Width: 100,
	}

	cmd := &cobra.Command{
		Use:     "messages <task-id> [flags]",
		Short:   "Show the conversation of a task",
		Aliases: []string{"msgs"},
		Args:    cobra.ExactArgs(1),
		Long: `Show the conversation of a task.

Every user message shows how long the agent took to answer. While the agent
has not answered the latest message yet, the time keeps counting until the
task finishes.`,
		Example: `  # Show the conversation of a task
  taskview messages 01JQ8Z3W5X

  # Show the conversation as JSON
  taskview messages 01JQ8Z3W5X --output json`,
		GroupID: "task",
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			ctx := cmd.Context()

			task, err := fetchTask(ctx, taskID)
			if err != nil {
				return err
			}

			store := conversation.NewStore(getAPIClient(ctx), taskID)
			if _, err := store.Refresh(ctx, false); err != nil {
				return fail.EnhanceError(err, errorContext(ctx, taskID))
			}

			display := newMessagesDisplay(store.Messages(), task, time.Now(), options.Width)
			return getRenderer(ctx, cmd.OutOrStdout()).Render(display, &options.RenderOptions)
		},
	}

	cmd.Flags().IntVar(&options.Width, "width", options.Width, "width of the text output")
	addRenderOptions(cmd, &options.RenderOptions)

	return cmd
}

type MessageDisplay struct {
	ID        string         `json:"id" yaml:"id"`
	Role      v1.MessageRole `json:"role" yaml:"role"`
	Content   string         `json:"content" yaml:"content"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
	Answered  *bool          `json:"answered,omitempty" yaml:"answered,omitempty"`
	Duration  string         `json:"duration,omitempty" yaml:"duration,omitempty"`
}

type MessagesDisplay struct {
	TaskID   string           `json:"taskId" yaml:"taskId"`
	Status   v1.TaskStatus    `json:"status" yaml:"status"`
	Messages []MessageDisplay `json:"messages" yaml:"messages"`

	context terminal.MessageContext
	width   int
}

func newMessagesDisplay(msgs []v1.TaskMessage, task *v1.Task, now time.Time, width int) *MessagesDisplay {
	display := &MessagesDisplay{
		TaskID:   task.ID,
		Status:   task.Status,
		Messages: make([]MessageDisplay, 0, len(msgs)),
		context: terminal.MessageContext{
			Messages: msgs,
			Task:     task,
			Now:      now,
		},
		width: width,
	}

	for _, msg := range msgs {
		md := MessageDisplay{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   conversation.DisplayContent(msg),
			CreatedAt: msg.CreatedAt,
		}
		if msg.Role == v1.MessageRoleUser {
			answered := conversation.HasAgentResponse(msgs, msg.CreatedAt)
			md.Answered = &answered
			if answered || conversation.ShowsLiveTimer(msgs, msg) {
				md.Duration = conversation.FormatDuration(msgs, msg.CreatedAt, task, now)
			}
		}
		display.Messages = append(display.Messages, md)
	}

	return display
}

func (d *MessagesDisplay) RenderText(w io.Writer) error {
	if len(d.context.Messages) == 0 {
		_, err := fmt.Fprintln(w, "No messages yet")
		return err
	}

	for i, msg := range d.context.Messages {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if _, err := fmt.Fprintln(w, terminal.RenderMessage(msg, d.context, false, false, d.width)); err != nil {
			return err
		}
	}
	return nil
}
