package browser

import (
	"context"
	"errors"
	"sync"
	"testing"

	api_client "github.com/furisto/taskview/api/go/client"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"
)

const testTaskID = "task-1"

var testFiles = []v1.FileChangeRecord{
	{Filename: "src/main.go", Status: v1.FileStatusModified, Additions: 4, Deletions: 2, Changes: 6},
	{Filename: "src/internal/util.go", Status: v1.FileStatusAdded, Additions: 10, Changes: 10},
	{Filename: "README.md", Status: v1.FileStatusModified, Additions: 1, Changes: 1},
}

func successResponse(files []v1.FileChangeRecord) *v1.FilesResponse {
	return &v1.FilesResponse{Success: true, Files: files}
}

func TestCoordinator_MaybeFetchOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)
	client.EXPECT().
		ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).
		Return(successResponse(testFiles), nil).
		Times(1)

	c := NewCoordinator(NewStore(), testTaskID, client)

	fetched, err := c.MaybeFetch(context.Background(), "feature/x", v1.ViewModeChanges)
	if err != nil || !fetched {
		t.Fatalf("MaybeFetch() = %v, %v; want true, nil", fetched, err)
	}

	fetched, err = c.MaybeFetch(context.Background(), "feature/x", v1.ViewModeChanges)
	if err != nil || fetched {
		t.Fatalf("second MaybeFetch() = %v, %v; want false, nil", fetched, err)
	}

	state := c.State()
	if state.Loading {
		t.Errorf("loading not cleared")
	}
	if diff := cmp.Diff(testFiles, state.Changes.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if !state.Changes.FetchAttempted {
		t.Errorf("fetchAttempted not set")
	}
}

func TestCoordinator_MaybeFetchGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		branch string
		setup  func(*Store)
	}{
		{
			name:   "no branch reference",
			branch: "",
		},
		{
			name:   "files already cached",
			branch: "main",
			setup: func(s *Store) {
				files := append([]v1.FileChangeRecord(nil), testFiles...)
				s.Update(testTaskID, Update{Mode: v1.ViewModeChanges, ModeUpdate: &ModeUpdate{Files: &files}})
			},
		},
		{
			name:   "fetch in flight",
			branch: "main",
			setup: func(s *Store) {
				loading := true
				s.Update(testTaskID, Update{Loading: &loading})
			},
		},
		{
			name:   "empty result already attempted",
			branch: "main",
			setup: func(s *Store) {
				attempted := true
				s.Update(testTaskID, Update{Mode: v1.ViewModeChanges, ModeUpdate: &ModeUpdate{FetchAttempted: &attempted}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := api_client.NewMockTaskClient(ctrl)

			store := NewStore()
			if tt.setup != nil {
				tt.setup(store)
			}

			c := NewCoordinator(store, testTaskID, client)
			fetched, err := c.MaybeFetch(context.Background(), tt.branch, v1.ViewModeChanges)
			if err != nil || fetched {
				t.Errorf("MaybeFetch() = %v, %v; want false, nil", fetched, err)
			}
		})
	}
}

func TestCoordinator_DefaultExpandState(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).Return(successResponse(testFiles), nil)
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeAll).Return(successResponse(testFiles), nil)

	c := NewCoordinator(NewStore(), testTaskID, client)
	ctx := context.Background()

	if _, err := c.MaybeFetch(ctx, "main", v1.ViewModeChanges); err != nil {
		t.Fatal(err)
	}
	if _, err := c.MaybeFetch(ctx, "main", v1.ViewModeAll); err != nil {
		t.Fatal(err)
	}

	state := c.State()
	if diff := cmp.Diff([]string{"src", "src/internal"}, state.Changes.ExpandedFolders.Paths()); diff != "" {
		t.Errorf("changes mode expand set mismatch (-want +got):\n%s", diff)
	}
	if len(state.All.ExpandedFolders) != 0 {
		t.Errorf("all mode should start collapsed, got %v", state.All.ExpandedFolders.Paths())
	}
}

func TestCoordinator_FailuresClearModeData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resp      *v1.FilesResponse
		err       error
		wantError string
	}{
		{
			name:      "application failure",
			resp:      &v1.FilesResponse{Success: false, Error: "branch not found"},
			wantError: "branch not found",
		},
		{
			name:      "application failure without message",
			resp:      &v1.FilesResponse{Success: false},
			wantError: fetchFailedMessage,
		},
		{
			name:      "transport failure",
			err:       &api_client.TransportError{Op: "GET", Err: errors.New("connection refused")},
			wantError: fetchFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := api_client.NewMockTaskClient(ctrl)
			client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeAll).Return(tt.resp, tt.err).Times(1)

			store := NewStore()
			stale := append([]v1.FileChangeRecord(nil), testFiles...)
			store.Update(testTaskID, Update{Mode: v1.ViewModeAll, ModeUpdate: &ModeUpdate{Files: &stale}})

			c := NewCoordinator(store, testTaskID, client)
			fetched, err := c.Refresh(context.Background(), "main", v1.ViewModeAll, 1)
			if !fetched {
				t.Fatalf("expected refresh to fetch")
			}
			if err == nil {
				t.Fatalf("expected error")
			}

			state := c.State()
			if state.Error != tt.wantError {
				t.Errorf("error = %q, want %q", state.Error, tt.wantError)
			}
			if state.Loading {
				t.Errorf("loading not cleared")
			}
			if len(state.All.Files) != 0 || len(state.All.FileTree.Children) != 0 {
				t.Errorf("expected mode data to be cleared, got %d files", len(state.All.Files))
			}
			if !state.All.FetchAttempted {
				t.Errorf("fetchAttempted must be set after failure")
			}

			if fetched, _ := c.MaybeFetch(context.Background(), "main", v1.ViewModeAll); fetched {
				t.Errorf("failure must not be retried automatically")
			}
		})
	}
}

func TestCoordinator_Refresh(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	store := NewStore()
	c := NewCoordinator(store, testTaskID, client)
	ctx := context.Background()

	updated := append(append([]v1.FileChangeRecord(nil), testFiles...), v1.FileChangeRecord{Filename: "go.mod", Status: v1.FileStatusModified})

	gomock.InOrder(
		client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).Return(successResponse(testFiles), nil),
		client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).
			DoAndReturn(func(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error) {
				if store.Get(testTaskID).Changes.FetchAttempted {
					t.Errorf("fetchAttempted must be cleared before the refresh fetch")
				}
				return successResponse(updated), nil
			}),
	)

	if _, err := c.MaybeFetch(ctx, "main", v1.ViewModeChanges); err != nil {
		t.Fatal(err)
	}

	if fetched, _ := c.Refresh(ctx, "main", v1.ViewModeChanges, 0); fetched {
		t.Errorf("refresh key 0 must not trigger")
	}

	if fetched, err := c.Refresh(ctx, "main", v1.ViewModeChanges, 1); !fetched || err != nil {
		t.Fatalf("Refresh(1) = %v, %v; want true, nil", fetched, err)
	}

	if fetched, _ := c.Refresh(ctx, "main", v1.ViewModeChanges, 1); fetched {
		t.Errorf("repeated refresh key must not trigger")
	}

	state := c.State()
	if !state.Changes.FetchAttempted {
		t.Errorf("fetchAttempted must be set after the refresh fetch")
	}
	if diff := cmp.Diff(updated, state.Changes.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinator_RefreshDuringFetchIsCoalesced(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	final := []v1.FileChangeRecord{{Filename: "final.go", Status: v1.FileStatusAdded}}

	gomock.InOrder(
		client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).
			DoAndReturn(func(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error) {
				close(started)
				<-release
				return successResponse(testFiles), nil
			}),
		client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).Return(successResponse(final), nil),
	)

	c := NewCoordinator(NewStore(), testTaskID, client)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := c.MaybeFetch(ctx, "main", v1.ViewModeChanges); err != nil {
			t.Errorf("MaybeFetch() error = %v", err)
		}
	}()

	<-started
	for key := uint64(1); key <= 3; key++ {
		if fetched, _ := c.Refresh(ctx, "main", v1.ViewModeChanges, key); fetched {
			t.Errorf("Refresh(%d) started a second concurrent fetch", key)
		}
	}
	close(release)
	wg.Wait()

	state := c.State()
	if state.Loading {
		t.Errorf("loading not cleared")
	}
	if diff := cmp.Diff(final, state.Changes.Files); diff != "" {
		t.Errorf("files must reflect the last refresh (-want +got):\n%s", diff)
	}
}

func TestCoordinator_FilesLoadedHandler(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).Return(successResponse(testFiles), nil)
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeAll).Return(successResponse(nil), nil)

	var calls [][]string
	c := NewCoordinator(NewStore(), testTaskID, client, WithFilesLoadedHandler(func(mode v1.ViewMode, filenames []string) {
		calls = append(calls, filenames)
	}))

	c.MaybeFetch(context.Background(), "main", v1.ViewModeChanges)
	c.MaybeFetch(context.Background(), "main", v1.ViewModeAll)

	want := [][]string{{"src/main.go", "src/internal/util.go", "README.md"}}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("onFilesLoaded calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinator_LateResponseAfterClose(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)

	store := NewStore()
	var c *Coordinator
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).
		DoAndReturn(func(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error) {
			c.Close()
			return successResponse(testFiles), nil
		})

	loaded := false
	c = NewCoordinator(store, testTaskID, client, WithFilesLoadedHandler(func(v1.ViewMode, []string) {
		loaded = true
	}))

	if _, err := c.MaybeFetch(context.Background(), "main", v1.ViewModeChanges); err != nil {
		t.Fatal(err)
	}

	state := store.Get(testTaskID)
	if len(state.Changes.Files) != 0 {
		t.Errorf("late response must be discarded")
	}
	if state.Loading {
		t.Errorf("in-flight guard must be released")
	}
	if loaded {
		t.Errorf("onFilesLoaded must not fire after close")
	}

	if fetched, _ := c.MaybeFetch(context.Background(), "main", v1.ViewModeChanges); fetched {
		t.Errorf("closed coordinator must not fetch")
	}
}

func TestCoordinator_Metrics(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := api_client.NewMockTaskClient(ctrl)
	client.EXPECT().ListFiles(gomock.Any(), testTaskID, v1.ViewModeChanges).Return(nil, errors.New("timeout"))

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	c := NewCoordinator(NewStore(), testTaskID, client, WithMetrics(metrics))

	c.MaybeFetch(context.Background(), "main", v1.ViewModeChanges)

	got := testutil.ToFloat64(metrics.fetches.WithLabelValues("changes", outcomeTransportError))
	if got != 1 {
		t.Errorf("transport error count = %v, want 1", got)
	}

}
