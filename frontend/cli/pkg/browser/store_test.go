package browser

import (
	"testing"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
	"github.com/furisto/taskview/shared/conv"
	"github.com/google/go-cmp/cmp"
)

func TestStore_LazyCreation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	state := store.Get("task-1")

	if state.Loading || state.Error != "" {
		t.Errorf("unexpected initial flags: loading=%v error=%q", state.Loading, state.Error)
	}
	for _, mode := range []v1.ViewMode{v1.ViewModeChanges, v1.ViewModeAll} {
		m := state.Mode(mode)
		if len(m.Files) != 0 || m.FetchAttempted || len(m.ExpandedFolders) != 0 {
			t.Errorf("%s: expected empty mode state, got %+v", mode, m)
		}
		if m.FileTree == nil {
			t.Errorf("%s: expected empty root directory", mode)
		}
	}
}

func TestStore_UpdateMergesIntoMode(t *testing.T) {
	t.Parallel()

	store := NewStore()
	files := []v1.FileChangeRecord{{Filename: "src/a.go", Status: v1.FileStatusAdded}}
	tree := filetree.Build(files)

	store.Update("task-1", Update{
		Mode: v1.ViewModeChanges,
		ModeUpdate: &ModeUpdate{
			Files:          &files,
			FileTree:       tree,
			FetchAttempted: conv.Ptr(true),
		},
	})

	state := store.Update("task-1", Update{
		Mode:       v1.ViewModeChanges,
		ModeUpdate: &ModeUpdate{ExpandedFolders: NewFolderSet("src")},
	})

	changes := state.Mode(v1.ViewModeChanges)
	if diff := cmp.Diff(files, changes.Files); diff != "" {
		t.Errorf("files were discarded by expand update (-want +got):\n%s", diff)
	}
	if changes.FileTree != tree {
		t.Errorf("file tree was replaced by expand update")
	}
	if !changes.FetchAttempted {
		t.Errorf("fetchAttempted was reset by expand update")
	}
	if !changes.ExpandedFolders.Has("src") {
		t.Errorf("expected src to be expanded")
	}

	all := state.Mode(v1.ViewModeAll)
	if len(all.Files) != 0 || all.FetchAttempted || len(all.ExpandedFolders) != 0 {
		t.Errorf("update of changes mode touched all mode: %+v", all)
	}
}

func TestStore_TopLevelMerge(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update("task-1", Update{Loading: conv.Ptr(true), Error: conv.Ptr("boom")})
	state := store.Update("task-1", Update{Loading: conv.Ptr(false)})

	if state.Loading {
		t.Errorf("expected loading to be false")
	}
	if state.Error != "boom" {
		t.Errorf("error = %q, want it untouched", state.Error)
	}

	other := store.Get("task-2")
	if other.Error != "" {
		t.Errorf("state leaked across tasks")
	}
}

func TestFolderSet_ToggleIsInvolution(t *testing.T) {
	t.Parallel()

	original := NewFolderSet("src", "docs")

	once := original.Toggle("src/util")
	twice := once.Toggle("src/util")

	if diff := cmp.Diff(original.Paths(), twice.Paths()); diff != "" {
		t.Errorf("toggle twice mismatch (-want +got):\n%s", diff)
	}
	if original.Has("src/util") {
		t.Errorf("Toggle mutated the original set")
	}
	if !once.Has("src/util") {
		t.Errorf("expected src/util after first toggle")
	}
}

func TestCoordinator_ToggleFolderLeavesOtherMode(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update("task-1", Update{
		Mode:       v1.ViewModeAll,
		ModeUpdate: &ModeUpdate{ExpandedFolders: NewFolderSet("vendor")},
	})

	c := NewCoordinator(store, "task-1", nil)

	c.ToggleFolder(v1.ViewModeChanges, "src")
	state := c.ToggleFolder(v1.ViewModeChanges, "src")

	if len(state.Changes.ExpandedFolders) != 0 {
		t.Errorf("expected changes expand set to be restored, got %v", state.Changes.ExpandedFolders.Paths())
	}
	if diff := cmp.Diff([]string{"vendor"}, state.All.ExpandedFolders.Paths()); diff != "" {
		t.Errorf("all mode expand set changed (-want +got):\n%s", diff)
	}
}
