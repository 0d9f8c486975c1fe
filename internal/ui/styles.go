package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow

	// Base Styles
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	// Components
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StyleBullet = lipgloss.NewStyle().Foreground(ColorSecondary)
)

