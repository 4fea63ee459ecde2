package cmd

import (
	"fmt"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
	"github.com/spf13/cobra"
)

func NewRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <task-id> <message-id>",
		Short: "Send an earlier message of a task again",
		Args:  cobra.ExactArgs(2),
		Example: `  # Resend a message that went unanswered
  taskview retry 01JQ8Z3W5X msg_42`,
		GroupID: "task",
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, messageID := args[0], args[1]
			ctx := cmd.Context()
			client := getAPIClient(ctx)

			store := conversation.NewStore(client, taskID)
			if _, err := store.Refresh(ctx, false); err != nil {
				return fail.EnhanceError(err, errorContext(ctx, taskID))
			}

			msg, ok := findMessage(store.Messages(), messageID)
			if !ok {
				return fmt.Errorf("message %s not found in task %s", messageID, taskID)
			}
			if msg.Role != v1.MessageRoleUser {
				return fmt.Errorf("message %s was not sent by you and cannot be retried", messageID)
			}

			composer := conversation.NewComposer(store, client)
			defer composer.Close()

			_, err := terminal.SpinnerFunc(cmd.ErrOrStderr(), "Sending message again...", func() (struct{}, error) {
				return struct{}{}, composer.Retry(ctx, msg.Content)
			}, terminal.WithErrorMsg("Failed to send message"), terminal.WithQuiet(quietSpinner(cmd.ErrOrStderr())))
			if err != nil {
				return fail.EnhanceError(err, errorContext(ctx, taskID))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Message %s sent again to task %s\n", messageID, taskID)
			return nil
		},
	}

	return cmd
}

func findMessage(msgs []v1.TaskMessage, id string) (v1.TaskMessage, bool) {
	for _, msg := range msgs {
		if msg.ID == id {
			return msg, true
		}
	}
	return v1.TaskMessage{}, false
}
