// Package tui provides the Bubble Tea progress view for the splimer CLI.
//
// The view is opt-in (--tui) and draws on stderr so that the report on
// stdout stays machine-readable. It shows the same Progress values the
// line printer does.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	// SuccessStyle for success states.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// WarningStyle for warning states.
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for error states.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// OutcomeStyle returns the style for a report outcome.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return SuccessStyle
	case "skipped":
		return WarningStyle
	case "failed", "error":
		return ErrorStyle
	default:
		return lipgloss.NewStyle()
	}
}
