package terminal

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))

	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("205"))

	userMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("39")).
				PaddingLeft(1)

	agentMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("212")).
				PaddingLeft(1)

	selectedMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("205")).
				PaddingLeft(1)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Bold(true)

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	additionsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deletionsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusStyles = map[string]lipgloss.Style{
		"added":    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"modified": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"deleted":  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"renamed":  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

var boldStyle = lipgloss.NewStyle().Bold(true)

func Bold(s string) string {
	return boldStyle.Render(s)
}
