package cmd

import (
	"fmt"
	"io"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/browser"
	"github.com/furisto/taskview/frontend/cli/pkg/fail"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

type filesOptions struct {
	Mode          v1.ViewMode
	Branch        string
	Filter        string
	Select        string
	RenderOptions RenderOptions
}

func NewFilesCmd() *cobra.Command {
	options := filesOptions{
		Mode: v1.ViewModeChanges,
	}

	cmd := &cobra.Command{
		Use:   "files <task-id> [flags]",
		Short: "Show the files of a task",
		Args:  cobra.ExactArgs(1),
		Long: `Show the files of a task as a tree.

In "changes" mode only the files touched by the task are listed and every
folder is expanded. In "all" mode the whole repository is listed with the
folders collapsed; use --filter to narrow the listing down.`,
		Example: `  # Show the changed files of a task
  taskview files 01JQ8Z3W5X

  # Find files in the whole repository
  taskview files 01JQ8Z3W5X --mode all --filter handler

  # Pick the file that best matches a query
  taskview files 01JQ8Z3W5X --select main.go --output json`,
		GroupID: "task",
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			ctx := cmd.Context()

			branch := options.Branch
			if branch == "" {
				task, err := fetchTask(ctx, taskID)
				if err != nil {
					return err
				}
				branch = task.BranchName
			}
			if branch == "" {
				return fmt.Errorf("task %s has no branch yet, files are available once the task starts working", taskID)
			}

			store := browser.NewStore()
			coordinator := browser.NewCoordinator(store, taskID, getAPIClient(ctx))
			defer coordinator.Close()

			_, err := terminal.SpinnerFunc(cmd.ErrOrStderr(), "Loading files...", func() (bool, error) {
				return coordinator.MaybeFetch(ctx, branch, options.Mode)
			}, terminal.WithErrorMsg("Failed to load files"), terminal.WithQuiet(quietSpinner(cmd.ErrOrStderr())))
			if err != nil {
				return fail.EnhanceError(err, errorContext(ctx, taskID))
			}

			display := newFilesDisplay(taskID, branch, options.Mode, coordinator.State().Mode(options.Mode))
			if options.Filter != "" {
				display = display.filter(options.Filter)
			}
			if options.Select != "" {
				selected, ok := display.selectBest(options.Select)
				if !ok {
					return fmt.Errorf("no file matches %q", options.Select)
				}
				display.Selected = selected
			}

			return getRenderer(ctx, cmd.OutOrStdout()).Render(display, &options.RenderOptions)
		},
	}

	cmd.Flags().VarP(&options.Mode, "mode", "m", "view mode (changes or all)")
	cmd.Flags().StringVar(&options.Branch, "branch", "", "branch to list, defaults to the branch of the task")
	cmd.Flags().StringVarP(&options.Filter, "filter", "f", "", "only show files matching the fuzzy query")
	cmd.Flags().StringVar(&options.Select, "select", "", "select the file that best matches the fuzzy query")
	addRenderOptions(cmd, &options.RenderOptions)

	return cmd
}

type FileDisplay struct {
	Filename  string        `json:"filename" yaml:"filename"`
	Status    v1.FileStatus `json:"status" yaml:"status"`
	Additions int           `json:"additions" yaml:"additions"`
	Deletions int           `json:"deletions" yaml:"deletions"`
}

type FilesDisplay struct {
	TaskID   string        `json:"taskId" yaml:"taskId"`
	Branch   string        `json:"branch" yaml:"branch"`
	Mode     v1.ViewMode   `json:"mode" yaml:"mode"`
	Files    []FileDisplay `json:"files" yaml:"files"`
	Selected string        `json:"selected,omitempty" yaml:"selected,omitempty"`

	records  []v1.FileChangeRecord
	tree     *filetree.Directory
	expanded browser.FolderSet
}

func newFilesDisplay(taskID, branch string, mode v1.ViewMode, state browser.PerModeState) *FilesDisplay {
	display := &FilesDisplay{
		TaskID:   taskID,
		Branch:   branch,
		Mode:     mode,
		Files:    make([]FileDisplay, 0, len(state.Files)),
		records:  state.Files,
		tree:     state.FileTree,
		expanded: state.ExpandedFolders,
	}
	for _, f := range state.Files {
		display.Files = append(display.Files, FileDisplay{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
		})
	}
	return display
}

func (d *FilesDisplay) filenames() []string {
	names := make([]string, len(d.records))
	for i, f := range d.records {
		names[i] = f.Filename
	}
	return names
}

// filter keeps the files matching query in match order and expands every
// folder on the way to them.
func (d *FilesDisplay) filter(query string) *FilesDisplay {
	matches := fuzzy.Find(query, d.filenames())

	records := make([]v1.FileChangeRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, d.records[match.Index])
	}

	tree := filetree.Build(records)
	filtered := newFilesDisplay(d.TaskID, d.Branch, d.Mode, browser.PerModeState{
		Files:           records,
		FileTree:        tree,
		ExpandedFolders: browser.NewFolderSet(filetree.DirectoryPaths(tree)...),
	})
	return filtered
}

func (d *FilesDisplay) selectBest(query string) (string, bool) {
	matches := fuzzy.Find(query, d.filenames())
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

func (d *FilesDisplay) RenderText(w io.Writer) error {
	if len(d.Files) == 0 {
		_, err := fmt.Fprintf(w, "No files in %s mode\n", d.Mode)
		return err
	}

	if err := terminal.RenderTree(w, d.tree, d.expanded.Has); err != nil {
		return err
	}

	if d.Selected != "" {
		_, err := fmt.Fprintf(w, "\n%s Selected %s\n", terminal.SuccessSymbol, d.Selected)
		return err
	}
	return nil
}
