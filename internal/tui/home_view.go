package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogsearch/internal/stats"
)

func renderHomeScreen(width, height int, summary stats.Summary, top []stats.BlogCount) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)
	dimStyle := lipgloss.NewStyle().Foreground(colorDim)

	var lines []string

	lines = append(lines, logoStyle.Render("b l o g s e a r c h"))
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%d articles from %d blogs", summary.TotalArticles, summary.TotalBlogs)))
	lines = append(lines, "")

	if len(top) > 0 {
		for _, b := range top {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%-24s %4d", truncateStr(b.Name, 24), b.Count)))
		}
		lines = append(lines, "")
	}

	// Menu items
	lines = append(lines, keyStyle.Render("[/]")+"  "+labelStyle.Render("Search"))
	lines = append(lines, keyStyle.Render("[e]")+"  "+labelStyle.Render("Browse latest"))
	lines = append(lines, "")
	lines = append(lines, keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := max((height-contentHeight)/3, 0)

	// Center horizontally
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
