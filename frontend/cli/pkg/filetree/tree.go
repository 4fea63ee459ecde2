// Package filetree turns the flat file change list of a task into a directory
// tree and provides the ordering used when the tree is rendered.
package filetree

import (
	"sort"
	"strings"

	v1 "github.com/furisto/taskview/api/go/v1"
)

// Node is either a *File or a *Directory.
type Node interface {
	isNode()
}

type File struct {
	Filename  string
	Status    v1.FileStatus
	Additions int
	Deletions int
	Changes   int
}

type Directory struct {
	Children map[string]Node
}

func (*File) isNode()      {}
func (*Directory) isNode() {}

func NewDirectory() *Directory {
	return &Directory{Children: make(map[string]Node)}
}

// Build creates a fresh tree from records. Paths are split on "/" without any
// further validation; every record must have a distinct, non-empty filename.
func Build(records []v1.FileChangeRecord) *Directory {
	root := NewDirectory()

	for _, record := range records {
		segments := strings.Split(record.Filename, "/")
		current := root

		for _, segment := range segments[:len(segments)-1] {
			child, ok := current.Children[segment].(*Directory)
			if !ok {
				child = NewDirectory()
				current.Children[segment] = child
			}
			current = child
		}

		current.Children[segments[len(segments)-1]] = &File{
			Filename:  record.Filename,
			Status:    record.Status,
			Additions: record.Additions,
			Deletions: record.Deletions,
			Changes:   record.Changes,
		}
	}

	return root
}

// Entry is a named child of a directory.
type Entry struct {
	Name string
	Node Node
}

func (e Entry) IsDir() bool {
	_, ok := e.Node.(*Directory)
	return ok
}

// Entries returns the children of dir in display order: directories first,
// then files, each group sorted case-insensitively by name.
func Entries(dir *Directory) []Entry {
	if dir == nil {
		return nil
	}

	entries := make([]Entry, 0, len(dir.Children))
	for name, node := range dir.Children {
		entries = append(entries, Entry{Name: name, Node: node})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}

		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})

	return entries
}

// LeafPaths reconstructs the path of every file in the tree.
func LeafPaths(root *Directory) []string {
	var paths []string
	walk(root, "", func(path string, node Node) {
		if _, ok := node.(*File); ok {
			paths = append(paths, path)
		}
	})
	sort.Strings(paths)
	return paths
}

// DirectoryPaths returns the path of every directory below root.
func DirectoryPaths(root *Directory) []string {
	var paths []string
	walk(root, "", func(path string, node Node) {
		if _, ok := node.(*Directory); ok {
			paths = append(paths, path)
		}
	})
	sort.Strings(paths)
	return paths
}

func walk(dir *Directory, prefix string, fn func(path string, node Node)) {
	if dir == nil {
		return
	}
	for name, node := range dir.Children {
		path := JoinPath(prefix, name)
		fn(path, node)
		if child, ok := node.(*Directory); ok {
			walk(child, path, fn)
		}
	}
}

func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
