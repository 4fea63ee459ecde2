package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/posthog/posthog-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	api "github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/browser"
	"github.com/furisto/taskview/frontend/cli/pkg/conversation"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
	"github.com/furisto/taskview/shared/analytics"
	"github.com/furisto/taskview/shared/event"
	"github.com/furisto/taskview/shared/listener"
)

type watchOptions struct {
	Mode         v1.ViewMode
	PollInterval time.Duration
	MetricsAddr  string
}

func NewWatchCmd() *cobra.Command {
	options := watchOptions{
		Mode:         v1.ViewModeChanges,
		PollInterval: conversation.DefaultPollInterval,
	}

	cmd := &cobra.Command{
		Use:   "watch <task-id> [flags]",
		Short: "Follow the files and conversation of a task",
		Args:  cobra.ExactArgs(1),
		Long: `Open an interactive view of a task.

The left pane shows the files of the task, the right pane the conversation.
Messages are polled in the background and the answer time of the latest
message keeps counting until the agent replies.`,
		Example: `  # Follow a task
  taskview watch 01JQ8Z3W5X

  # Start in the repository view and expose metrics
  taskview watch 01JQ8Z3W5X --mode all --metrics-addr 127.0.0.1:9465`,
		GroupID: "task",
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]

			if err := validatePollInterval(options.PollInterval); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			task, err := fetchTask(ctx, taskID)
			if err != nil {
				return err
			}

			// the terminal belongs to the view from here on
			slog.SetDefault(newLogger(setupLogSink(ctx, getUserInfo(ctx), nil), getGlobalOptions(ctx).LogLevel))

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			session, closeSession := newWatchSession(getAPIClient(ctx), task, options, registry)
			defer closeSession()

			if key := os.Getenv("TASKVIEW_POSTHOG_KEY"); key != "" {
				client, err := posthog.NewWithConfig(key, posthog.Config{
					Endpoint: os.Getenv("TASKVIEW_POSTHOG_HOST"),
				})
				if err != nil {
					slog.Warn("failed to create analytics client", "error", err)
				} else {
					defer client.Close()
					analytics.Attach(session.Bus, client)
				}
			}

			g, gctx := errgroup.WithContext(ctx)

			if options.MetricsAddr != "" {
				provider := listener.NewTCPProvider(options.MetricsAddr)
				l, err := provider.Create()
				if err != nil {
					return fail.EnhanceError(err, nil)
				}
				defer provider.Close()

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
				server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

				g.Go(func() error {
					if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("metrics server: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					return server.Shutdown(shutdownCtx)
				})
			}

			g.Go(func() error {
				defer cancel()
				err := terminal.Run(terminal.NewModel(gctx, session), tea.WithContext(gctx))
				if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
					return nil
				}
				return err
			})

			return g.Wait()
		},
	}

	cmd.Flags().VarP(&options.Mode, "mode", "m", "initial view mode (changes or all)")
	cmd.Flags().DurationVar(&options.PollInterval, "poll-interval", options.PollInterval, "how often messages are polled")
	cmd.Flags().StringVar(&options.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	return cmd
}

// newWatchSession wires the state holders of one task to a fresh event bus.
// The returned function tears everything down again.
func newWatchSession(client api.TaskClient, task *v1.Task, options watchOptions, registry *prometheus.Registry) (terminal.Session, func()) {
	bus := event.NewBus(event.WithMetrics(registry))

	coordinator := browser.NewCoordinator(browser.NewStore(), task.ID, client,
		browser.WithMetrics(browser.NewMetrics(registry)),
		browser.WithFilesLoadedHandler(func(mode v1.ViewMode, filenames []string) {
			event.Publish(bus, event.FilesLoaded{TaskID: task.ID, Mode: mode, Filenames: filenames})
		}),
	)

	metrics := conversation.NewMetrics(registry)
	store := conversation.NewStore(client, task.ID,
		conversation.WithStoreMetrics(metrics),
		conversation.WithRefreshHandler(func(taskID string, result conversation.RefreshResult) {
			event.Publish(bus, event.MessagesRefreshed{
				TaskID:         taskID,
				Count:          result.Count,
				ScrollToLatest: result.ScrollToLatest,
			})
		}),
	)
	poller := conversation.NewPoller(store, conversation.WithPollInterval(options.PollInterval))
	composer := conversation.NewComposer(store, client,
		conversation.WithComposerMetrics(metrics),
		conversation.WithSentHandler(func(taskID string, retry bool) {
			event.Publish(bus, event.MessageSent{TaskID: taskID, Retry: retry})
		}),
	)

	event.Subscribe(bus, func(_ context.Context, e event.FileSelected) {
		slog.Info("file selected", "task_id", e.TaskID, "file", e.Filename)
	}, nil)

	session := terminal.Session{
		Task:     task,
		Mode:     options.Mode,
		Client:   client,
		Bus:      bus,
		Files:    coordinator,
		Messages: store,
		Poller:   poller,
		Composer: composer,
	}

	return session, func() {
		poller.Stop()
		composer.Close()
		coordinator.Close()
		bus.Close()
	}
}
