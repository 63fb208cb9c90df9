package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/search"
)

func relativeTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 24*time.Hour:
		return "today"
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2006")
	}
}

func renderListItem(r search.Result, selected bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(r.Article.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(r.Article.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(r.Article.BlogName)
	if pub, ok := r.Article.PublishedDate(); ok {
		meta += " " + itemTimeStyle.Render("· "+relativeTime(pub, now))
	}
	if r.Final > 0 {
		meta += " " + itemTimeStyle.Render("·") + " " + scoreStyle(r.Final).Render(fmt.Sprintf("%.0f", r.Final))
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(results []search.Result, cursor int, height int, width int, now time.Time) string {
	if len(results) == 0 {
		return lipglossCenter("No articles found", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := max(height/itemHeight, 1)

	start, end := visibleWindow(len(results), cursor, visible)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(results[i], i == cursor, width, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// visibleWindow returns the [start, end) range of n items that keeps cursor
// on screen when only visible items fit.
func visibleWindow(n, cursor, visible int) (int, int) {
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
		start = max(end-visible, 0)
	}
	return start, end
}

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max((width-len(s))/2, 0)) + s
}
