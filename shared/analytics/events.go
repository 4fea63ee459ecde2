// Package analytics reports anonymous usage events. Every function accepts a
// nil client, which turns reporting off.
package analytics

import (
	"context"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/shared/event"
	"github.com/posthog/posthog-go"
)

const distinctID = "user"

func EmitMessageSent(client posthog.Client, taskID string, retry bool) {
	if client == nil {
		return
	}
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "message_sent",
		Properties: map[string]interface{}{
			"task_id": taskID,
			"retry":   retry,
		},
	})
}

func EmitViewModeChanged(client posthog.Client, taskID string, mode v1.ViewMode) {
	if client == nil {
		return
	}
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "view_mode_changed",
		Properties: map[string]interface{}{
			"task_id": taskID,
			"mode":    string(mode),
		},
	})
}

func EmitFilesLoaded(client posthog.Client, taskID string, mode v1.ViewMode, count int) {
	if client == nil {
		return
	}
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "files_loaded",
		Properties: map[string]interface{}{
			"task_id": taskID,
			"mode":    string(mode),
			"count":   count,
		},
	})
}

// Attach forwards the usage relevant events of bus to client. The returned
// subscriptions are released with the bus.
func Attach(bus *event.Bus, client posthog.Client) []*event.Subscription {
	if client == nil {
		return nil
	}

	return []*event.Subscription{
		event.Subscribe(bus, func(_ context.Context, e event.MessageSent) {
			EmitMessageSent(client, e.TaskID, e.Retry)
		}, nil),
		event.Subscribe(bus, func(_ context.Context, e event.ViewModeChanged) {
			EmitViewModeChanged(client, e.TaskID, e.Mode)
		}, nil),
		event.Subscribe(bus, func(_ context.Context, e event.FilesLoaded) {
			EmitFilesLoaded(client, e.TaskID, e.Mode, len(e.Filenames))
		}, nil),
	}
}
