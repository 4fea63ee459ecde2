package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
	"github.com/spf13/cobra"
)

func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <task-id> <message>...",
		Short: "Send a message to a task",
		Args:  cobra.MinimumNArgs(2),
		Example: `  # Ask the agent to continue
  taskview send 01JQ8Z3W5X "Please add tests for the parser"`,
		GroupID: "task",
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			ctx := cmd.Context()
			client := getAPIClient(ctx)

			store := conversation.NewStore(client, taskID)
			composer := conversation.NewComposer(store, client)
			defer composer.Close()

			_, err := terminal.SpinnerFunc(cmd.ErrOrStderr(), "Sending message...", func() (struct{}, error) {
				return struct{}{}, composer.Send(ctx, strings.Join(args[1:], " "))
			}, terminal.WithErrorMsg("Failed to send message"), terminal.WithQuiet(quietSpinner(cmd.ErrOrStderr())))
			if errors.Is(err, conversation.ErrEmptyMessage) {
				return fmt.Errorf("message cannot be empty")
			}
			if err != nil {
				return fail.EnhanceError(err, errorContext(ctx, taskID))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Message sent to task %s\n", taskID)
			return nil
		},
	}

	return cmd
}
