package event

import v1 "github.com/furisto/taskview/api/go/v1"

// FilesLoaded is published after a successful, non-empty file fetch.
type FilesLoaded struct {
	TaskID    string
	Mode      v1.ViewMode
	Filenames []string
}

func (FilesLoaded) Event() {}

type FileSelected struct {
	TaskID   string
	Filename string
}

func (FileSelected) Event() {}

type ViewModeChanged struct {
	TaskID string
	Mode   v1.ViewMode
}

func (ViewModeChanged) Event() {}

type MessagesRefreshed struct {
	TaskID         string
	Count          int
	ScrollToLatest bool
}

func (MessagesRefreshed) Event() {}

type MessageSent struct {
	TaskID string
	Retry  bool
}

func (MessageSent) Event() {}
