package cmd

import (
	"context"

	api "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared"
	"github.com/furisto/taskview/shared/keyring"
	"github.com/spf13/cobra"
)

func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage connection contexts for task services",
		Long: `Manage contexts to connect to different task service instances.

A context defines the HTTP(S) address of a task service and optional authentication.
Use contexts to switch between local development, staging, and production environments.

Examples:
  • Local service: http://localhost:3000
  • Remote service: https://tasks.dev.internal:8443`,
		Aliases: []string{"ctx"},
		GroupID: "system",
	}

	cmd.AddCommand(NewContextListCmd())
	cmd.AddCommand(NewContextCurrentCmd())
	cmd.AddCommand(NewContextUseCmd())
	cmd.AddCommand(NewContextAddCmd())
	cmd.AddCommand(NewContextRemoveCmd())

	return cmd
}

// ContextDisplay is one configured context. Current is the context stored
// in the configuration, Active the one task commands resolve to after the
// --context flag and TASKVIEW_CONTEXT are applied.
type ContextDisplay struct {
	Name     string `json:"name" yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Auth     string `json:"auth" yaml:"auth"`
	Current  bool   `json:"current" yaml:"current"`
	Active   bool   `json:"active" yaml:"active"`
}

func authStatus(auth *api.AuthConfig) string {
	switch {
	case !auth.IsConfigured():
		return "none"
	case auth.Token != "":
		return "token (inline)"
	default:
		return auth.TokenRef
	}
}

// activeContextName resolves the context task commands would connect with.
func activeContextName(ctx context.Context, contexts *api.EndpointContexts) (string, string) {
	return resolveContextName(getGlobalOptions(ctx).Context, contexts.CurrentContext)
}

func getKeyringProvider(ctx context.Context) keyring.Provider {
	provider, ok := ctx.Value(ContextKeyKeyring).(keyring.Provider)
	if !ok {
		return keyring.NewKeyringProvider()
	}
	return provider
}

func getContextManager(ctx context.Context) *shared.ContextManager {
	return shared.NewContextManagerWithKeyring(getFileSystem(ctx), getUserInfo(ctx), getKeyringProvider(ctx))
}
