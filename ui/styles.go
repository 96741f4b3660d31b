package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the lines printed above and below the row block
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Bold(true).
			Padding(0, 2)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

// Header renders the banner printed before the rows are drawn
func Header(title, version string) string {
	return HeaderStyle.Render(fmt.Sprintf("%s %s", title, version))
}

// Summary renders the closing line for a run of workers
func Summary(processed, failed int) string {
	if failed > 0 {
		return ErrorStyle.Render(fmt.Sprintf("❌ Total processed: %d (%d workers failed)", processed, failed))
	}
	return SuccessStyle.Render(fmt.Sprintf("✅ Total processed: %d", processed))
}
