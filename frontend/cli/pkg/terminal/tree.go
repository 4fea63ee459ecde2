package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/frontend/cli/pkg/filetree"
)

func statusLetter(status v1.FileStatus) string {
	switch status {
	case v1.FileStatusAdded:
		return "A"
	case v1.FileStatusModified:
		return "M"
	case v1.FileStatusDeleted:
		return "D"
	case v1.FileStatusRenamed:
		return "R"
	}
	return " "
}

// FormatStats renders the line counts of f, e.g. "+1,204 -37". Files without
// counts render as an empty string.
func FormatStats(f *filetree.File) string {
	var parts []string
	if f.Additions > 0 {
		parts = append(parts, additionsStyle.Render("+"+humanize.Comma(int64(f.Additions))))
	}
	if f.Deletions > 0 {
		parts = append(parts, deletionsStyle.Render("-"+humanize.Comma(int64(f.Deletions))))
	}
	return strings.Join(parts, " ")
}

// FormatRow renders a single row of a flattened file tree.
func FormatRow(row filetree.Row, expanded bool) string {
	indent := strings.Repeat("  ", row.Depth)

	switch node := row.Node.(type) {
	case *filetree.Directory:
		symbol := FolderClosedSymbol
		if expanded {
			symbol = FolderOpenSymbol
		}
		return fmt.Sprintf("%s%s %s", indent, symbol, dirStyle.Render(row.Name+"/"))

	case *filetree.File:
		status := statusLetter(node.Status)
		if style, ok := statusStyles[string(node.Status)]; ok {
			status = style.Render(status)
		}
		line := fmt.Sprintf("%s  %s %s", indent, status, row.Name)
		if stats := FormatStats(node); stats != "" {
			line += " " + stats
		}
		return line
	}

	return indent + row.Name
}

// RenderTree writes every visible row of root to w, one per line.
func RenderTree(w io.Writer, root *filetree.Directory, expanded func(path string) bool) error {
	for _, row := range filetree.Visible(root, expanded) {
		isExpanded := row.IsDir() && expanded != nil && expanded(row.Path)
		if _, err := fmt.Fprintln(w, FormatRow(row, isExpanded)); err != nil {
			return err
		}
	}
	return nil
}
