package browser

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	api_client "github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
	"github.com/furisto/taskview/shared"
	"github.com/furisto/taskview/shared/conv"
)

const fetchFailedMessage = "Failed to fetch files"

type FilesLister interface {
	ListFiles(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error)
}

type CoordinatorOption func(*Coordinator)

// WithFilesLoadedHandler registers fn to receive the filenames of every
// successful fetch that returned at least one file.
func WithFilesLoadedHandler(fn func(mode v1.ViewMode, filenames []string)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onFilesLoaded = fn
	}
}

func WithMetrics(metrics *Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// Coordinator decides when the file listing of one task has to be fetched and
// writes the outcome into the shared Store.
type Coordinator struct {
	store         *Store
	taskID        string
	client        FilesLister
	onFilesLoaded func(v1.ViewMode, []string)
	metrics       *Metrics

	lastRefreshKey atomic.Uint64
	closed         atomic.Bool

	// pending holds refreshes requested while a fetch was in flight. Only
	// accessed inside Store.modify callbacks, so the store lock guards it.
	pending map[v1.ViewMode]bool
}

func NewCoordinator(store *Store, taskID string, client FilesLister, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:   store,
		taskID:  taskID,
		client:  client,
		pending: make(map[v1.ViewMode]bool),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Coordinator) TaskID() string {
	return c.taskID
}

func (c *Coordinator) State() State {
	return c.store.Get(c.taskID)
}

// MaybeFetch fetches the listing for mode when a branch exists, nothing is
// cached for the mode, no fetch is in flight and no earlier attempt finished.
// It reports whether a fetch was issued.
func (c *Coordinator) MaybeFetch(ctx context.Context, branchRef string, mode v1.ViewMode) (bool, error) {
	if branchRef == "" || c.closed.Load() {
		return false, nil
	}

	_, started := c.store.modify(c.taskID, func(s State) (State, bool) {
		m := s.Mode(mode)
		if len(m.Files) > 0 || s.Loading || m.FetchAttempted {
			return s, false
		}
		s.Loading = true
		s.Error = ""
		return s, true
	})
	if !started {
		return false, nil
	}

	return true, c.run(ctx, mode)
}

// Refresh forces a refetch of mode for every refreshKey greater than the last
// one seen. Zero never triggers. When another fetch is in flight the refresh
// runs as soon as that fetch finishes and Refresh returns false.
func (c *Coordinator) Refresh(ctx context.Context, branchRef string, mode v1.ViewMode, refreshKey uint64) (bool, error) {
	if refreshKey == 0 || branchRef == "" || c.closed.Load() {
		return false, nil
	}

	for {
		last := c.lastRefreshKey.Load()
		if refreshKey <= last {
			return false, nil
		}
		if c.lastRefreshKey.CompareAndSwap(last, refreshKey) {
			break
		}
	}

	started := false
	c.store.modify(c.taskID, func(s State) (State, bool) {
		m := s.Mode(mode)
		m.FetchAttempted = false
		s.setMode(mode, m)

		if s.Loading {
			c.pending[mode] = true
			return s, true
		}

		s.Loading = true
		s.Error = ""
		started = true
		return s, true
	})

	if !started {
		slog.Debug("refresh queued behind in-flight fetch", "task_id", c.taskID, "mode", mode)
		return false, nil
	}

	return true, c.run(ctx, mode)
}

// ToggleFolder flips path in the expanded set of mode only.
func (c *Coordinator) ToggleFolder(mode v1.ViewMode, path string) State {
	state, _ := c.store.modify(c.taskID, func(s State) (State, bool) {
		m := s.Mode(mode)
		m.ExpandedFolders = m.ExpandedFolders.Toggle(path)
		s.setMode(mode, m)
		return s, true
	})
	return state
}

// Close detaches the coordinator. Responses that arrive afterwards are
// discarded; only the in-flight guard is released.
func (c *Coordinator) Close() {
	c.closed.Store(true)
}

func (c *Coordinator) run(ctx context.Context, mode v1.ViewMode) error {
	var lastErr error

	for {
		outcome := c.fetch(ctx, mode)
		if outcome.err != nil {
			lastErr = outcome.err
		}

		next, more := c.complete(mode, outcome)

		if outcome.filenames != nil && c.onFilesLoaded != nil && !c.closed.Load() {
			c.onFilesLoaded(mode, outcome.filenames)
		}

		if !more {
			return lastErr
		}
		mode = next
	}
}

type fetchOutcome struct {
	update    ModeUpdate
	errorMsg  string
	filenames []string
	err       error
	discarded bool
}

func (c *Coordinator) fetch(ctx context.Context, mode v1.ViewMode) fetchOutcome {
	start := time.Now()
	resp, err := c.client.ListFiles(ctx, c.taskID, mode)
	if apiErr, ok := api_client.AsAPIError(err); ok {
		resp, err = &v1.FilesResponse{Success: false, Error: apiErr.Message}, nil
	}

	if c.closed.Load() {
		c.metrics.observe(mode, outcomeDiscarded, time.Since(start))
		return fetchOutcome{discarded: true}
	}

	cleared := ModeUpdate{
		Files:          conv.Ptr([]v1.FileChangeRecord{}),
		FileTree:       filetree.NewDirectory(),
		FetchAttempted: conv.Ptr(true),
	}

	switch {
	case err != nil:
		c.metrics.observe(mode, outcomeTransportError, time.Since(start))
		slog.Error("failed to fetch files", "task_id", c.taskID, "mode", mode, "error", err)
		return fetchOutcome{
			update:   cleared,
			errorMsg: fetchFailedMessage,
			err:      shared.Wrap(shared.ErrorSourceTransport, err, fetchFailedMessage),
		}

	case resp == nil || !resp.Success:
		msg := fetchFailedMessage
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		c.metrics.observe(mode, outcomeApplicationError, time.Since(start))
		slog.Warn("file listing reported failure", "task_id", c.taskID, "mode", mode, "error", msg)
		return fetchOutcome{
			update:   cleared,
			errorMsg: msg,
			err:      shared.Errorf(shared.ErrorSourceApplication, "%s", msg),
		}
	}

	files := append([]v1.FileChangeRecord{}, resp.Files...)
	tree := filetree.Build(files)

	expanded := NewFolderSet()
	if mode == v1.ViewModeChanges {
		expanded = NewFolderSet(filetree.DirectoryPaths(tree)...)
	}

	var filenames []string
	if len(files) > 0 {
		filenames = make([]string, 0, len(files))
		for _, f := range files {
			filenames = append(filenames, f.Filename)
		}
	}

	c.metrics.observe(mode, outcomeSuccess, time.Since(start))
	slog.Debug("fetched files", "task_id", c.taskID, "mode", mode, "count", len(files))

	return fetchOutcome{
		update: ModeUpdate{
			Files:           &files,
			FileTree:        tree,
			ExpandedFolders: expanded,
			FetchAttempted:  conv.Ptr(true),
		},
		filenames: filenames,
	}
}

// complete writes the outcome and either releases the in-flight guard or hands
// it to the next pending refresh.
func (c *Coordinator) complete(mode v1.ViewMode, outcome fetchOutcome) (v1.ViewMode, bool) {
	var (
		next v1.ViewMode
		more bool
	)

	c.store.modify(c.taskID, func(s State) (State, bool) {
		if !outcome.discarded {
			s = Update{
				Error:      conv.Ptr(outcome.errorMsg),
				Mode:       mode,
				ModeUpdate: &outcome.update,
			}.apply(s)
		}

		if !c.closed.Load() {
			for _, candidate := range []v1.ViewMode{mode, mode.Other()} {
				if !c.pending[candidate] {
					continue
				}
				delete(c.pending, candidate)

				m := s.Mode(candidate)
				m.FetchAttempted = false
				s.setMode(candidate, m)
				s.Error = ""

				next, more = candidate, true
				return s, true
			}
		}

		s.Loading = false
		return s, true
	})

	return next, more
}
