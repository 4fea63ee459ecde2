package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	api_client "github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/mock/gomock"
)

const testPollInterval = 5 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPoller_LoadsThenPolls(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	var (
		store   *Store
		mu      sync.Mutex
		loading []bool
	)
	client.EXPECT().
		ListMessages(gomock.Any(), testTaskID).
		DoAndReturn(func(context.Context, string) (*v1.MessagesResponse, error) {
			mu.Lock()
			loading = append(loading, store.Loading())
			mu.Unlock()
			return messagesResponse(nil), nil
		}).
		MinTimes(3)

	store = NewStore(client, testTaskID)
	poller := NewPoller(store, WithPollInterval(testPollInterval))

	poller.Start(context.Background())
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(loading) >= 3
	})
	poller.Stop()

	mu.Lock()
	defer mu.Unlock()
	want := []bool{true, false, false}
	if diff := cmp.Diff(want, loading[:3]); diff != "" {
		t.Errorf("loading indicator per refresh mismatch (-want +got):\n%s", diff)
	}
}

func TestPoller_StopLeavesNoTimer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	var calls atomic.Int32
	client.EXPECT().
		ListMessages(gomock.Any(), testTaskID).
		DoAndReturn(func(context.Context, string) (*v1.MessagesResponse, error) {
			calls.Add(1)
			return messagesResponse(nil), nil
		}).
		AnyTimes()

	poller := NewPoller(NewStore(client, testTaskID), WithPollInterval(testPollInterval))
	poller.Start(context.Background())
	poller.Start(context.Background())
	waitFor(t, func() bool { return calls.Load() >= 2 })

	poller.Stop()
	poller.Stop()
	if poller.Running() {
		t.Fatalf("Running() after Stop() = true")
	}

	stopped := calls.Load()
	time.Sleep(10 * testPollInterval)
	if got := calls.Load(); got != stopped {
		t.Errorf("refreshes after Stop() = %d, want 0", got-stopped)
	}
}

func TestPoller_StopsWithContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)
	client.EXPECT().
		ListMessages(gomock.Any(), testTaskID).
		Return(messagesResponse(nil), nil).
		AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPoller(NewStore(client, testTaskID), WithPollInterval(testPollInterval))
	poller.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop() did not return after context cancellation")
	}
}

func TestPoller_Switch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	first := conversationOf(v1.MessageRoleUser, v1.MessageRoleAgent)
	second := conversationOf(v1.MessageRoleUser)

	var switched atomic.Bool
	client.EXPECT().
		ListMessages(gomock.Any(), testTaskID).
		DoAndReturn(func(context.Context, string) (*v1.MessagesResponse, error) {
			if switched.Load() {
				t.Errorf("old task polled after Switch()")
			}
			return messagesResponse(first), nil
		}).
		MinTimes(1)
	client.EXPECT().
		ListMessages(gomock.Any(), "task-2").
		Return(messagesResponse(second), nil).
		MinTimes(1)

	store := NewStore(client, testTaskID)
	poller := NewPoller(store, WithPollInterval(testPollInterval))

	poller.Start(context.Background())
	waitFor(t, func() bool { return len(store.Messages()) == len(first) })

	poller.Stop()
	switched.Store(true)
	poller.Switch(context.Background(), "task-2")
	defer poller.Stop()

	waitFor(t, func() bool { return len(store.Messages()) == len(second) })
	if store.TaskID() != "task-2" {
		t.Errorf("TaskID() = %q, want %q", store.TaskID(), "task-2")
	}
}
