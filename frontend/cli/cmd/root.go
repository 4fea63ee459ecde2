package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	api "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared"
	"github.com/furisto/taskview/shared/keyring"
)

var (
	// Version is the version of the CLI
	Version = "unknown"

	// GitCommit is the commit that the CLI was built from
	GitCommit = "unknown"

	// BuildDate is the date the CLI was built
	BuildDate = "unknown"
)

type globalOptions struct {
	LogLevel LogLevel
	Context  string
}

func NewRootCmd() *cobra.Command {
	options := globalOptions{}
	cmd := &cobra.Command{
		Use:     "taskview",
		Short:   "taskview: follow the files and conversation of a running task.",
		Long:    figure.NewColorFigure("taskview", "standard", "blue", true).String(),
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			userInfo := getUserInfo(cmd.Context())

			options.LogLevel = resolveLogLevel(cmd, &options)
			slog.SetDefault(newLogger(setupLogSink(cmd.Context(), userInfo, cmd.ErrOrStderr()), options.LogLevel))
			cmd.SetContext(setGlobalOptions(cmd.Context(), &options))

			if requiresContext(cmd) {
				err := setAPIClient(cmd.Context(), cmd, options.Context)
				if err != nil {
					slog.Error("failed to set API client", "error", err)
					return err
				}
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Var(&options.LogLevel, "log-level", "set the log level")
	cmd.PersistentFlags().StringVar(&options.Context, "context", "", "context to use (overrides current context)")

	cmd.AddGroup(
		&cobra.Group{
			ID:    "task",
			Title: "Task Commands",
		},
	)

	cmd.AddGroup(
		&cobra.Group{
			ID:    "system",
			Title: "System Commands",
		},
	)

	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewFilesCmd())
	cmd.AddCommand(NewMessagesCmd())
	cmd.AddCommand(NewSendCmd())
	cmd.AddCommand(NewRetryCmd())

	cmd.AddCommand(NewContextCmd())
	return cmd
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
			fmt.Fprintf(os.Stderr, "Panic occurred: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if dsn := os.Getenv("TASKVIEW_SENTRY_DSN"); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     dsn,
			Release: Version,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize sentry: %s\n", err)
		}
	}

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}

	sentry.Flush(2 * time.Second)
}

func setAPIClient(ctx context.Context, cmd *cobra.Command, contextOverride string) error {
	if getAPIClient(ctx) != nil {
		return nil
	}

	contextManager := getContextManager(ctx)
	endpointContexts, err := contextManager.LoadContext()
	if err != nil {
		return err
	}

	if err := endpointContexts.Validate(); err != nil {
		return err
	}

	contextName, _ := resolveContextName(contextOverride, endpointContexts.CurrentContext)
	if contextName == "" {
		return fmt.Errorf("no context configured\n\nTo get started:\n  • Run 'taskview context add <name> --endpoint <url>' to configure the task service")
	}

	endpointContext, ok := endpointContexts.Contexts[contextName]
	if !ok {
		return fmt.Errorf("context %q not found", contextName)
	}

	clientOptions, err := buildClientOptions(endpointContext, contextManager)
	if err != nil {
		return fmt.Errorf("failed to configure client: %w", err)
	}

	apiClient, err := api.NewClient(endpointContext, clientOptions...)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}
	cmd.SetContext(context.WithValue(cmd.Context(), ContextKeyAPIClient, api.TaskClient(apiClient)))
	cmd.SetContext(context.WithValue(cmd.Context(), ContextKeyEndpointContext, endpointContext))

	return nil
}

// Sources a context name can be resolved from, in order of precedence.
const (
	contextSourceFlag   = "--context"
	contextSourceEnv    = "TASKVIEW_CONTEXT"
	contextSourceConfig = "config"
)

func resolveContextName(flagValue, configValue string) (string, string) {
	if flagValue != "" {
		return flagValue, contextSourceFlag
	}

	if envValue := os.Getenv("TASKVIEW_CONTEXT"); envValue != "" {
		return envValue, contextSourceEnv
	}

	return configValue, contextSourceConfig
}

func buildClientOptions(endpointContext api.EndpointContext, contextManager *shared.ContextManager) ([]api.ClientOption, error) {
	var options []api.ClientOption

	if endpointContext.Auth.IsConfigured() {
		token, err := resolveToken(endpointContext.Auth, contextManager)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve auth token: %w", err)
		}
		options = append(options, api.WithAuthToken(token))
	}

	return options, nil
}

func resolveToken(auth *api.AuthConfig, contextManager *shared.ContextManager) (string, error) {
	if auth.Token != "" {
		return auth.Token, nil
	}

	if auth.TokenRef != "" {
		keyringKey := auth.KeyringKey()
		if keyringKey == "" {
			return "", fmt.Errorf("invalid token-ref format")
		}

		token, err := contextManager.RetrieveToken(keyringKey)
		if err != nil {
			if errors.Is(err, &keyring.ErrSecretNotFound{}) {
				return "", fmt.Errorf("token not found in keyring for context %q - store it again with 'taskview context add --auth-token'", keyringKey)
			}
			return "", err
		}
		return token, nil
	}

	return "", fmt.Errorf("no token configured")
}

// endpointAddress returns the address of the context the command runs against.
func endpointAddress(ctx context.Context) string {
	endpointContext, ok := ctx.Value(ContextKeyEndpointContext).(api.EndpointContext)
	if !ok {
		return ""
	}
	return endpointContext.Address
}

func requiresContext(cmd *cobra.Command) bool {
	skipCommands := []string{"help", "completion", "context."}
	for _, skipCmd := range skipCommands {
		cmdName := cmd.Name()
		parentCmd := cmd.Parent()
		if parentCmd != nil {
			cmdName = parentCmd.Name() + "." + cmdName
		}

		if strings.HasPrefix(cmdName, skipCmd) || strings.HasPrefix(cmd.Name(), skipCmd) {
			return false
		}
	}

	return true
}

func confirmDeletion(stdin io.Reader, stdout io.Writer, kind string, idOrNames []string) bool {
	if len(idOrNames) == 0 {
		return false
	}

	if len(idOrNames) > 1 {
		kind = kind + "s"
	}

	message := fmt.Sprintf("Are you sure you want to delete %s %s?", kind, strings.Join(idOrNames, " "))
	return confirm(stdin, stdout, message)
}

func confirm(stdin io.Reader, stdout io.Writer, message string) bool {
	fmt.Fprintf(stdout, "%s (y/n): ", message)
	var confirm string
	_, err := fmt.Fscan(stdin, &confirm)
	if err != nil {
		return false
	}

	confirm = strings.TrimSpace(strings.ToLower(confirm))
	return confirm == "y" || confirm == "yes"
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (e *LogLevel) String() string {
	if e == nil {
		return ""
	}
	return string(*e)
}

func (e *LogLevel) Set(v string) error {
	for _, level := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if v == string(level) {
			*e = level
			return nil
		}
	}
	return errors.New(`must be one of "debug", "info", "warn", or "error"`)
}

func (e *LogLevel) Type() string {
	return "log-level"
}

func (e *LogLevel) SlogLevel() slog.Level {
	switch *e {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}

	return slog.LevelInfo
}

func resolveLogLevel(cmd *cobra.Command, options *globalOptions) LogLevel {
	if cmd.Flags().Changed("log-level") {
		return options.LogLevel
	}

	var level LogLevel
	if err := level.Set(os.Getenv("TASKVIEW_LOG_LEVEL")); err == nil {
		return level
	}
	return LogLevelInfo
}

func newLogger(sink io.Writer, level LogLevel) *slog.Logger {
	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}))
}

// setupLogSink writes to console and the rotating log file. A nil console
// keeps logs in the file only.
func setupLogSink(ctx context.Context, userInfo shared.UserInfo, console io.Writer) io.Writer {
	if disable, ok := ctx.Value(ContextKeyDisableFileLogs).(bool); ok && disable {
		if console == nil {
			return io.Discard
		}
		return console
	}

	logDir, err := userInfo.LogDir()
	if err != nil {
		if console == nil {
			return io.Discard
		}
		return console
	}

	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "taskview.json"),
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
	if console == nil {
		return fileLogger
	}
	return io.MultiWriter(console, fileLogger)
}
