package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	api "github.com/furisto/taskview/api/go/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type contextAddOptions struct {
	Endpoint   string
	AuthToken  bool
	SetCurrent bool
}

// tokenReader reads a secret from the terminal without echo.
type tokenReader func() ([]byte, error)

func readTerminalToken() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func getTokenReader(ctx context.Context) tokenReader {
	reader, ok := ctx.Value(ContextKeyTokenReader).(tokenReader)
	if !ok {
		return readTerminalToken
	}
	return reader
}

func NewContextAddCmd() *cobra.Command {
	var options contextAddOptions

	cmd := &cobra.Command{
		Use:   "add <name> [flags]",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		Long: `Add a new context or update an existing one.

The endpoint is the HTTP(S) address of the task service.

Authentication tokens are securely stored in the system keyring (macOS Keychain, 
Linux Secret Service, Windows Credential Manager).`,
		Example: `  # Add a local context
  taskview context add local --endpoint http://localhost:3000

  # Add remote context with authentication
  taskview context add production \
    --endpoint https://tasks.prod.example.com:8443 \
    --auth-token \
    --set-current

  # Update existing context endpoint
  taskview context add staging --endpoint https://new-staging.example.com:8443`,
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]
			contextManager := getContextManager(cmd.Context())

			var authConfig *api.AuthConfig
			if options.AuthToken {
				fmt.Fprint(cmd.OutOrStdout(), "Enter authentication token: ")
				tokenBytes, err := getTokenReader(cmd.Context())()
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token := strings.TrimSpace(string(tokenBytes))
				if token == "" {
					return fmt.Errorf("token cannot be empty")
				}

				authConfig = &api.AuthConfig{
					TokenRef: api.KeyringRef(contextName),
				}

				if err := contextManager.StoreToken(contextName, token); err != nil {
					return fmt.Errorf("failed to store token in keyring: %w", err)
				}
			}

			existed, err := contextManager.UpsertContext(contextName, options.Endpoint, options.SetCurrent, authConfig)
			if err != nil {
				return err
			}

			action := "created"
			if existed {
				action = "updated"
			}

			message := fmt.Sprintf("Context %q %s", contextName, action)
			if options.SetCurrent {
				message += " and set as current"
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)

			return nil
		},
	}

	cmd.Flags().StringVar(&options.Endpoint, "endpoint", "", "Task service address (http or https URL)")
	cmd.Flags().BoolVar(&options.AuthToken, "auth-token", false, "Prompt for authentication token")
	cmd.Flags().BoolVar(&options.SetCurrent, "set-current", false, "Set this context as current")

	cmd.MarkFlagRequired("endpoint")

	return cmd
}
