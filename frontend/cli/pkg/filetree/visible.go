package filetree

// Row is one line of a rendered tree.
type Row struct {
	Path  string
	Name  string
	Depth int
	Node  Node
}

func (r Row) IsDir() bool {
	_, ok := r.Node.(*Directory)
	return ok
}

// Visible flattens the tree in display order, descending only into directories
// for which expanded returns true.
func Visible(root *Directory, expanded func(path string) bool) []Row {
	var rows []Row
	appendVisible(&rows, root, "", 0, expanded)
	return rows
}

func appendVisible(rows *[]Row, dir *Directory, prefix string, depth int, expanded func(string) bool) {
	for _, entry := range Entries(dir) {
		path := JoinPath(prefix, entry.Name)
		*rows = append(*rows, Row{Path: path, Name: entry.Name, Depth: depth, Node: entry.Node})

		child, ok := entry.Node.(*Directory)
		if ok && expanded != nil && expanded(path) {
			appendVisible(rows, child, path, depth+1, expanded)
		}
	}
}
