// Package render draws session snapshots for terminals.
package render

import "github.com/charmbracelet/lipgloss"

const cellWidth = 9

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	cellStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Width(cellWidth).Align(lipgloss.Center)
	startStyle  = cellStyle.BorderForeground(lipgloss.Color("39"))
	exitStyle   = cellStyle.BorderForeground(lipgloss.Color("42")).Bold(true)
	hiddenStyle = cellStyle.Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	winnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)
