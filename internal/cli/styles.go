// Package cli renders engine output for the terminal with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	saffron = lipgloss.Color("#F4A300")
	teal    = lipgloss.Color("#4ECDC4")
	amber   = lipgloss.Color("#FFE66D")
	coral   = lipgloss.Color("#FF6B6B")
	mint    = lipgloss.Color("#95E1D3")
	slate   = lipgloss.Color("#666666")
	divider = lipgloss.Color("#333333")
)

func foreground(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text styles shared by the renderers.
var (
	SuccessStyle = foreground(teal)
	WarningStyle = foreground(amber)
	ErrorStyle   = foreground(coral)
	InfoStyle    = foreground(mint)
	SubtleStyle  = foreground(slate)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// TitleStyle heads listings and boxes.
	TitleStyle  = foreground(saffron).Bold(true)
	PromptStyle = foreground(saffron).Bold(true)

	BoxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(divider).Padding(1, 2)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(divider)
	TableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// Icons prefixed to messages and titles.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	SaffronIcon = "✿"
	ChartIcon   = "📊"
	RuleIcon    = "§"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError prefixes message with a cross.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatTitle renders a listing or box title behind icon.
func FormatTitle(icon, title string) string {
	return withIcon(TitleStyle, icon, title)
}

// FormatPrompt renders an input prompt ending in an arrow.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox draws content in a rounded box under a title line.
func RenderBox(icon, title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, FormatTitle(icon, title), content))
}
