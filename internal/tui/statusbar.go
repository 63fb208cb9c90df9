package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(resultCount int, query, filterLabel string, width int, searching bool, refreshing bool) string {
	queryStyle := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %d articles", resultCount)
	if query != "" {
		left += " for " + queryStyle.Render(query)
	}
	if filterLabel != "All" {
		left += " · " + filterLabel
	}

	right := " / search  f filter  i score  o open  ? help  q quit "

	if searching {
		right = " esc cancel  enter search "
	}
	if refreshing {
		left += " (refreshing...)"
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "
	gap := max(width-lipgloss.Width(right), 0)
	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
