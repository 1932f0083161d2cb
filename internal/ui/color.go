package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/cuke/internal/ast"
)

var (
	passedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	undefinedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	commentStyle   = lipgloss.NewStyle().Faint(true)
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle    = lipgloss.NewStyle().Bold(true)
)

func statusStyle(s ast.Status) lipgloss.Style {
	switch s {
	case ast.StatusPassed:
		return passedStyle
	case ast.StatusFailed:
		return failedStyle
	case ast.StatusSkipped:
		return skippedStyle
	case ast.StatusPending:
		return pendingStyle
	case ast.StatusUndefined:
		return undefinedStyle
	}
	return lipgloss.NewStyle()
}

// Colorize renders text in the color of status.
func Colorize(s ast.Status, text string) string {
	return statusStyle(s).Render(text)
}

// ListRow prints one scenario of `cuke list`.
func ListRow(w io.Writer, location, keyword, name string, locationWidth int) {
	fmt.Fprintf(w, "%s  %s: %s\n", commentStyle.Render(fmt.Sprintf("%-*s", locationWidth, location)), keyword, name)
}

// HistoryRow prints one run of `cuke history`.
func HistoryRow(w io.Writer, id, started string, outcome string, counts string) {
	var style lipgloss.Style
	switch outcome {
	case "passed":
		style = passedStyle
	case "failed":
		style = failedStyle
	default:
		style = commentStyle
	}
	fmt.Fprintf(w, "%s  %s  %s  %s\n", commentStyle.Render(id), started, style.Render(fmt.Sprintf("%-8s", outcome)), counts)
}
