package style

import "github.com/charmbracelet/lipgloss"

// Palette of the command output. The rest of the terminal keeps its own colors.
var (
	Text         = lipgloss.Color("#cdd6f4")
	AccentColor  = lipgloss.Color("#cba6f7")
	SuccessColor = lipgloss.Color("#a6e3a1")
	WarningColor = lipgloss.Color("#f9e2af")
	ErrorColor   = lipgloss.Color("#f38ba8")
)
