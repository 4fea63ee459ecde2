package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type contextListOptions struct {
	RenderOptions RenderOptions
}

func NewContextListCmd() *cobra.Command {
	var options contextListOptions

	cmd := &cobra.Command{
		Use:     "list [flags]",
		Short:   "List the configured task services",
		Aliases: []string{"ls"},
		Long: `List the configured task services.

CURRENT marks the context stored in the configuration, ACTIVE the one task
commands connect to once --context and TASKVIEW_CONTEXT are taken into account.`,
		Example: `  # List all contexts
  taskview context list

  # See which service TASKVIEW_CONTEXT points task commands at
  TASKVIEW_CONTEXT=staging taskview context list --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointContexts, err := getContextManager(cmd.Context()).LoadContext()
			if err != nil {
				return fmt.Errorf("failed to load contexts: %w", err)
			}
			active, _ := activeContextName(cmd.Context(), endpointContexts)

			displays := make([]*ContextDisplay, 0, len(endpointContexts.Contexts))
			for name, endpoint := range endpointContexts.Contexts {
				displays = append(displays, &ContextDisplay{
					Name:     name,
					Endpoint: endpoint.Address,
					Auth:     authStatus(endpoint.Auth),
					Current:  name == endpointContexts.CurrentContext,
					Active:   name == active,
				})
			}

			sort.Slice(displays, func(i, j int) bool {
				return displays[i].Name < displays[j].Name
			})

			return getRenderer(cmd.Context(), cmd.OutOrStdout()).Render(displays, &options.RenderOptions)
		},
	}

	addRenderOptions(cmd, &options.RenderOptions)
	return cmd
}
