// Package styles holds the lipgloss styles shared by the CLI and the TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Colors.
var (
	ColorGray   = lipgloss.Color("8")
	ColorGreen  = lipgloss.Color("10")
	ColorYellow = lipgloss.Color("11")
	ColorRed    = lipgloss.Color("9")
	ColorBlue   = lipgloss.Color("12")
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorGray)
	sumStyle     = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// RenderLabel renders a field label such as "a:".
func RenderLabel(s string) string { return labelStyle.Render(s) }

// RenderDim renders secondary text such as key hints.
func RenderDim(s string) string { return dimStyle.Render(s) }

// RenderSum renders a computed sum.
func RenderSum(s string) string { return sumStyle.Render(s) }

// RenderWarning renders a wraparound notice.
func RenderWarning(s string) string { return warningStyle.Render(s) }

// RenderError renders an operand error.
func RenderError(s string) string { return errorStyle.Render(s) }

// RenderBox draws lines inside a rounded border. Lines wider than maxWidth
// (when positive) are truncated with an ellipsis.
func RenderBox(lines []string, maxWidth int) string {
	if maxWidth > 0 {
		// Border and padding take four columns.
		inner := maxWidth - 4
		if inner < 1 {
			inner = 1
		}
		for i, line := range lines {
			if ansi.StringWidth(line) > inner {
				lines[i] = ansi.Truncate(line, inner, "…")
			}
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
