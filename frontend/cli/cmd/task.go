package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"golang.org/x/term"
)

func errorContext(ctx context.Context, taskID string) map[string]any {
	return map[string]any{
		"address": endpointAddress(ctx),
		"task_id": taskID,
	}
}

func fetchTask(ctx context.Context, taskID string) (*v1.Task, error) {
	resp, err := getAPIClient(ctx).GetTask(ctx, taskID)
	if err != nil {
		return nil, fail.EnhanceError(err, errorContext(ctx, taskID))
	}

	if !resp.Success || resp.Task == nil {
		msg := resp.Error
		if msg == "" {
			msg = "no task in response"
		}
		return nil, fmt.Errorf("failed to load task %s: %s", taskID, msg)
	}

	return resp.Task, nil
}

// quietSpinner reports whether progress animations would end up somewhere
// other than a terminal.
func quietSpinner(w io.Writer) bool {
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}
