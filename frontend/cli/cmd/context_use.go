package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewContextUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the task service task commands connect to",
		Args:  cobra.ExactArgs(1),
		Example: `  # Follow tasks on the staging service
  taskview context use staging

  # Go back to the previous service
  taskview context use -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			contextManager := getContextManager(cmd.Context())

			endpointContexts, err := contextManager.LoadContext()
			if err != nil {
				return fmt.Errorf("failed to load contexts: %w", err)
			}

			contextName := args[0]
			if contextName == "-" {
				if endpointContexts.PreviousContext == "" {
					return fmt.Errorf("no previous context found")
				}
				contextName = endpointContexts.PreviousContext
			}

			if err := contextManager.SetCurrentContext(contextName); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Switched to context %q (%s)\n", contextName, endpointContexts.Contexts[contextName].Address)

			endpointContexts.CurrentContext = contextName
			if active, source := activeContextName(cmd.Context(), endpointContexts); active != contextName {
				fmt.Fprintf(out, "%s=%s still selects %q for task commands\n", source, active, active)
			}
			return nil
		},
	}

	return cmd
}
