package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/shared"
)

const refreshFailedMessage = "Failed to fetch messages"

type MessagesLister interface {
	ListMessages(ctx context.Context, taskID string) (*v1.MessagesResponse, error)
}

// RefreshResult describes a refresh that was applied to the store.
type RefreshResult struct {
	Count int
	// ScrollToLatest is set when the list grew, or went from empty to
	// non-empty. A view reading older messages stays put otherwise.
	ScrollToLatest bool
}

type StoreOption func(*Store)

// WithRefreshHandler registers fn to be called after every applied refresh.
func WithRefreshHandler(fn func(taskID string, result RefreshResult)) StoreOption {
	return func(s *Store) {
		s.onRefresh = fn
	}
}

func WithStoreMetrics(metrics *Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// Store holds the message list of the task currently shown. Every refresh
// replaces the list as a whole.
type Store struct {
	client    MessagesLister
	onRefresh func(string, RefreshResult)
	metrics   *Metrics

	mu         sync.RWMutex
	taskID     string
	generation uint64
	issued     uint64
	applied    uint64
	messages   []v1.TaskMessage
	loading    bool
}

func NewStore(client MessagesLister, taskID string, options ...StoreOption) *Store {
	s := &Store{
		client: client,
		taskID: taskID,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Store) TaskID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskID
}

// Messages returns a snapshot of the current list.
func (s *Store) Messages() []v1.TaskMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]v1.TaskMessage(nil), s.messages...)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Reset points the store at taskID and drops the current list. Refreshes still
// in flight for the previous task are discarded when they return.
func (s *Store) Reset(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskID = taskID
	s.generation++
	s.messages = nil
	s.loading = false
}

// Refresh fetches the message list and replaces the stored one. With
// showLoading the loading indicator is raised for the duration of the call.
// Failed refreshes leave the stored list untouched.
func (s *Store) Refresh(ctx context.Context, showLoading bool) (RefreshResult, error) {
	s.mu.Lock()
	taskID := s.taskID
	generation := s.generation
	s.issued++
	seq := s.issued
	if showLoading {
		s.loading = true
	}
	s.mu.Unlock()

	resp, err := s.client.ListMessages(ctx, taskID)
	if apiErr, ok := client.AsAPIError(err); ok {
		resp, err = &v1.MessagesResponse{Success: false, Error: apiErr.Message}, nil
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		s.metrics.refreshed(outcomeDiscarded)
		slog.Debug("discarding messages of previous task", "task_id", taskID)
		return RefreshResult{}, nil
	}
	if showLoading {
		s.loading = false
	}

	switch {
	case err != nil:
		s.mu.Unlock()
		s.metrics.refreshed(outcomeTransportError)
		return RefreshResult{}, shared.Wrap(shared.ErrorSourceTransport, err, refreshFailedMessage)

	case resp == nil || !resp.Success:
		s.mu.Unlock()
		msg := refreshFailedMessage
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		s.metrics.refreshed(outcomeApplicationError)
		return RefreshResult{}, shared.Errorf(shared.ErrorSourceApplication, "%s", msg)
	}

	// An older poll must not overwrite the answer to a newer one.
	if seq < s.applied {
		count := len(s.messages)
		s.mu.Unlock()
		s.metrics.refreshed(outcomeDiscarded)
		return RefreshResult{Count: count}, nil
	}

	previous := len(s.messages)
	s.messages = append([]v1.TaskMessage(nil), resp.Messages...)
	s.applied = seq
	result := RefreshResult{
		Count:          len(s.messages),
		ScrollToLatest: shouldScroll(previous, len(s.messages)),
	}
	s.mu.Unlock()

	s.metrics.refreshed(outcomeSuccess)
	if s.onRefresh != nil {
		s.onRefresh(taskID, result)
	}
	return result, nil
}

func shouldScroll(previous, current int) bool {
	if previous == 0 {
		return current > 0
	}
	return current > previous
}
