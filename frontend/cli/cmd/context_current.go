package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type contextCurrentOptions struct {
	RenderOptions RenderOptions
}

// CurrentContextDisplay is the task service task commands connect to and what
// selected it.
type CurrentContextDisplay struct {
	Name     string `json:"name" yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Auth     string `json:"auth" yaml:"auth"`
	Source   string `json:"source" yaml:"source"`
}

func (d *CurrentContextDisplay) RenderText(w io.Writer) error {
	line := fmt.Sprintf("%s (%s)", d.Name, d.Endpoint)
	if d.Source != contextSourceConfig {
		line += ", selected by " + d.Source
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func NewContextCurrentCmd() *cobra.Command {
	var options contextCurrentOptions

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the task service task commands connect to",
		Example: `  # Show the active context
  taskview context current

  # Check what an override resolves to
  TASKVIEW_CONTEXT=staging taskview context current --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointContexts, err := getContextManager(cmd.Context()).LoadContext()
			if err != nil {
				return fmt.Errorf("failed to load contexts: %w", err)
			}

			name, source := activeContextName(cmd.Context(), endpointContexts)
			if name == "" {
				return fmt.Errorf("no current context set")
			}

			endpoint, ok := endpointContexts.Contexts[name]
			if !ok {
				return fmt.Errorf("context %q selected by %s not found", name, source)
			}

			display := &CurrentContextDisplay{
				Name:     name,
				Endpoint: endpoint.Address,
				Auth:     authStatus(endpoint.Auth),
				Source:   source,
			}
			return getRenderer(cmd.Context(), cmd.OutOrStdout()).Render(display, &options.RenderOptions)
		},
	}

	addRenderOptions(cmd, &options.RenderOptions)
	return cmd
}
