package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

type contextRemoveOptions struct {
	Force bool
}

func NewContextRemoveCmd() *cobra.Command {
	var options contextRemoveOptions

	cmd := &cobra.Command{
		Use:     "remove <name>... [flags]",
		Short:   "Remove one or more task service contexts",
		Args:    cobra.MinimumNArgs(1),
		Aliases: []string{"rm"},
		Long: `Remove one or more contexts from the configuration.

The stored authentication token of each context is deleted from the system
keyring. All names are checked before anything is removed.`,
		Example: `  # Remove a single context
  taskview context remove staging

  # Remove several contexts without confirmation
  taskview context remove dev staging --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			contextManager := getContextManager(cmd.Context())

			endpointContexts, err := contextManager.LoadContext()
			if err != nil {
				return fmt.Errorf("failed to load contexts: %w", err)
			}
			for _, contextName := range args {
				if _, ok := endpointContexts.Contexts[contextName]; !ok {
					return fmt.Errorf("context %q not found", contextName)
				}
			}

			out := cmd.OutOrStdout()
			if !options.Force && !confirmDeletion(cmd.InOrStdin(), out, "context", args) {
				return nil
			}

			for _, contextName := range args {
				if err := contextManager.DeleteContext(contextName); err != nil {
					return err
				}
				fmt.Fprintf(out, "Context %q removed\n", contextName)
			}

			current := endpointContexts.CurrentContext
			if current != "" && slices.Contains(args, current) && len(endpointContexts.Contexts) > len(args) {
				fmt.Fprintln(out, "No current context set, pick one with 'taskview context use <name>'")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&options.Force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
