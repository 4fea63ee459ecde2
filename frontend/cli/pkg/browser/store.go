// Package browser keeps the per-task file browser state for both view modes and
// coordinates when file listings are fetched.
package browser

import (
	"sort"
	"sync"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
)

// FolderSet is an immutable set of expanded directory paths. Every change
// produces a new set.
type FolderSet map[string]struct{}

func NewFolderSet(paths ...string) FolderSet {
	set := make(FolderSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func (s FolderSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Toggle returns a copy of s with path's membership flipped.
func (s FolderSet) Toggle(path string) FolderSet {
	next := make(FolderSet, len(s)+1)
	for p := range s {
		next[p] = struct{}{}
	}
	if _, ok := next[path]; ok {
		delete(next, path)
	} else {
		next[path] = struct{}{}
	}
	return next
}

func (s FolderSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type PerModeState struct {
	Files           []v1.FileChangeRecord
	FileTree        *filetree.Directory
	ExpandedFolders FolderSet
	FetchAttempted  bool
}

func emptyModeState() PerModeState {
	return PerModeState{
		FileTree:        filetree.NewDirectory(),
		ExpandedFolders: NewFolderSet(),
	}
}

type State struct {
	Changes PerModeState
	All     PerModeState
	Loading bool
	// Error is empty when the last fetch did not fail.
	Error string
}

func (s State) Mode(mode v1.ViewMode) PerModeState {
	if mode == v1.ViewModeAll {
		return s.All
	}
	return s.Changes
}

func (s *State) setMode(mode v1.ViewMode, m PerModeState) {
	if mode == v1.ViewModeAll {
		s.All = m
	} else {
		s.Changes = m
	}
}

// ModeUpdate merges into one mode's state; nil fields are left untouched.
type ModeUpdate struct {
	Files           *[]v1.FileChangeRecord
	FileTree        *filetree.Directory
	ExpandedFolders FolderSet
	FetchAttempted  *bool
}

// Update is a shallow merge applied by Store.Update. Mode selects which
// PerModeState ModeUpdate applies to.
type Update struct {
	Loading    *bool
	Error      *string
	Mode       v1.ViewMode
	ModeUpdate *ModeUpdate
}

func (u Update) apply(s State) State {
	if u.Loading != nil {
		s.Loading = *u.Loading
	}
	if u.Error != nil {
		s.Error = *u.Error
	}

	if u.ModeUpdate == nil {
		return s
	}

	m := s.Mode(u.Mode)
	if u.ModeUpdate.Files != nil {
		m.Files = *u.ModeUpdate.Files
	}
	if u.ModeUpdate.FileTree != nil {
		m.FileTree = u.ModeUpdate.FileTree
	}
	if u.ModeUpdate.ExpandedFolders != nil {
		m.ExpandedFolders = u.ModeUpdate.ExpandedFolders
	}
	if u.ModeUpdate.FetchAttempted != nil {
		m.FetchAttempted = *u.ModeUpdate.FetchAttempted
	}
	s.setMode(u.Mode, m)

	return s
}

// Store maps task ids to their browser state. Entries are created on first
// access and live as long as the store.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*State
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]*State)}
}

// Get returns a snapshot of the task's state.
func (s *Store) Get(taskID string) State {
	s.mu.RLock()
	state, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if ok {
		return *state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.lookup(taskID)
}

// Update merges u into the task's state and returns the new snapshot.
func (s *Store) Update(taskID string, u Update) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.lookup(taskID)
	*state = u.apply(*state)
	return *state
}

// modify runs fn with the lock held so guards can be checked and applied in a
// single step.
func (s *Store) modify(taskID string, fn func(State) (State, bool)) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.lookup(taskID)
	next, ok := fn(*state)
	if ok {
		*state = next
	}
	return *state, ok
}

func (s *Store) lookup(taskID string) *State {
	state, ok := s.tasks[taskID]
	if !ok {
		state = &State{
			Changes: emptyModeState(),
			All:     emptyModeState(),
		}
		s.tasks[taskID] = state
	}
	return state
}
