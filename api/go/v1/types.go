package v1

import (
	"encoding/json"
	"fmt"
	"time"
)

type FileStatus string

const (
	FileStatusAdded    FileStatus = "added"
	FileStatusModified FileStatus = "modified"
	FileStatusDeleted  FileStatus = "deleted"
	FileStatusRenamed  FileStatus = "renamed"
)

type FileChangeRecord struct {
	Filename  string     `json:"filename" yaml:"filename"`
	Status    FileStatus `json:"status" yaml:"status"`
	Additions int        `json:"additions" yaml:"additions"`
	Deletions int        `json:"deletions" yaml:"deletions"`
	Changes   int        `json:"changes" yaml:"changes"`
}

// ViewMode selects which file listing a task browser shows. Each mode keeps its
// own cache and expand state.
type ViewMode string

const (
	ViewModeChanges ViewMode = "changes"
	ViewModeAll     ViewMode = "all"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewModeChanges, ViewModeAll:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("invalid view mode %q: must be one of %q or %q", s, ViewModeChanges, ViewModeAll)
}

func (m ViewMode) Other() ViewMode {
	if m == ViewModeAll {
		return ViewModeChanges
	}
	return ViewModeAll
}

// String, Set and Type let a ViewMode be bound directly as a cobra flag.
func (m *ViewMode) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

func (m *ViewMode) Set(v string) error {
	mode, err := ParseViewMode(v)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m *ViewMode) Type() string {
	return "view-mode"
}

type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleAgent MessageRole = "agent"
)

type TaskMessage struct {
	ID        string      `json:"id" yaml:"id"`
	Role      MessageRole `json:"role" yaml:"role"`
	Content   string      `json:"content" yaml:"content"`
	CreatedAt time.Time   `json:"createdAt" yaml:"createdAt"`
}

type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusStopped   TaskStatus = "stopped"
)

type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Status      TaskStatus `json:"status" yaml:"status"`
	BranchName  string     `json:"branchName,omitempty" yaml:"branchName,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}

// Finished reports whether the task reached a terminal status.
func (t *Task) Finished() bool {
	if t == nil {
		return false
	}
	switch t.Status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusStopped:
		return true
	}
	return false
}

type TaskResponse struct {
	Success bool   `json:"success"`
	Task    *Task  `json:"task,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FilesResponse is the payload of the file listing endpoint. The server also
// sends a pre-built tree; clients rebuild it from Files so FileTree is kept raw.
type FilesResponse struct {
	Success  bool               `json:"success"`
	Files    []FileChangeRecord `json:"files"`
	FileTree json.RawMessage    `json:"fileTree,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type MessagesResponse struct {
	Success  bool          `json:"success"`
	Messages []TaskMessage `json:"messages"`
	Error    string        `json:"error,omitempty"`
}

type ContinueRequest struct {
	Message string `json:"message"`
}

// ContinueResponse is the optional reply to a continue request. A missing
// success field counts as accepted.
type ContinueResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
