package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)
