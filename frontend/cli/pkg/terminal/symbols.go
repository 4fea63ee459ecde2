package terminal

import "github.com/charmbracelet/lipgloss"

var (
	infoSymbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true).
			SetString("ⓘ")

	errorSymbolStyle = lipgloss.NewStyle().
				SetString("❌")

	warningSymbolStyle = lipgloss.NewStyle().
				SetString("⚠️")

	successSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10")).
				Bold(true).
				SetString("✔")

	actionSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				SetString("▶")

	folderOpenSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("75")).
				SetString("▾")

	folderClosedSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("75")).
				SetString("▸")

	copiedSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10")).
				SetString("⧉")

	timerSymbolStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				SetString("⏱")
)

var (
	// InfoSymbol (ⓘ)
	InfoSymbol = infoSymbolStyle.String()

	// WarningSymbol (⚠️)
	WarningSymbol = warningSymbolStyle.String()

	// ErrorSymbol (❌)
	ErrorSymbol = errorSymbolStyle.String()

	// SuccessSymbol (✔)
	SuccessSymbol = successSymbolStyle.String()

	// ActionSymbol (▶)
	ActionSymbol = actionSymbolStyle.String()

	// FolderOpenSymbol (▾)
	FolderOpenSymbol = folderOpenSymbolStyle.String()

	// FolderClosedSymbol (▸)
	FolderClosedSymbol = folderClosedSymbolStyle.String()

	// CopiedSymbol (⧉)
	CopiedSymbol = copiedSymbolStyle.String()

	// TimerSymbol (⏱)
	TimerSymbol = timerSymbolStyle.String()
)
