package terminal

import (
	"regexp"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	leadingWhitespaceWithANSI  = regexp.MustCompile(`^(?:\x1b\[[0-9;]*m|\s)*`)
	trailingWhitespaceWithANSI = regexp.MustCompile(`(?:\x1b\[[0-9;]*m|\s)*$`)
)

// markdownRenderer caches one glamour renderer per wrap width; building one is
// far more expensive than rendering with it.
type markdownRenderer struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

var agentMarkdown = &markdownRenderer{renderers: make(map[int]*glamour.TermRenderer)}

func (r *markdownRenderer) render(content string, width int) string {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	md, ok := r.renderers[width]
	if !ok {
		var err error
		md, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"), // avoid OSC background queries
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		r.renderers[width] = md
	}

	out, err := md.Render(content)
	if err != nil {
		return content
	}
	return trimWhitespaceWithANSI(out)
}

func trimWhitespaceWithANSI(s string) string {
	s = leadingWhitespaceWithANSI.ReplaceAllString(s, "")
	return trailingWhitespaceWithANSI.ReplaceAllString(s, "")
}
