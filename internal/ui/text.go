package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// truncate fits value into width terminal cells, marking a cut with an
// ellipsis. Wide runes count as two cells.
func truncate(value string, width int) string {
	value = strings.TrimSpace(value)
	if width <= 0 {
		return value
	}
	return ansi.Truncate(value, width, ellipsis)
}

// truncateMiddle keeps both ends of value, which suits paths.
func truncateMiddle(value string, width int) string {
	value = strings.TrimSpace(value)
	total := ansi.StringWidth(value)
	if width <= 0 || total <= width {
		return value
	}
	if width == 1 {
		return ellipsis
	}
	keep := width - 1
	head := keep / 2
	return ansi.Truncate(value, head, "") + ellipsis + ansi.TruncateLeft(value, total-(keep-head), "")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
