package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogsearch/internal/search"
)

func renderPreview(r *search.Result, width, height, scroll int, showBreakdown bool) string {
	if r == nil {
		return lipglossCenter("Select an article", width, height)
	}
	a := r.Article

	contentWidth := max(width-2, 10)

	title := previewTitleStyle.Width(contentWidth).Render(a.Title)

	meta := a.BlogName
	if pub, ok := a.PublishedDate(); ok {
		meta += " · " + pub.Format("Jan 2, 2006")
	}
	if a.Author != "" {
		meta += " · " + a.Author
	}
	source := previewSourceStyle.Render(meta)

	desc := a.Summary
	if desc == "" {
		desc = "(No summary available)"
	}

	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))
	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + a.Link)

	parts := []string{title, source, "", body, "", link}
	if len(a.Tags) > 0 {
		parts = append(parts, itemTimeStyle.Render("Tags: "+strings.Join(a.Tags, ", ")))
	}
	if showBreakdown {
		parts = append(parts, "", renderBreakdown(*r))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func renderBreakdown(r search.Result) string {
	q := search.QualityWithBreakdown(r.Article)

	lines := []string{
		breakdownTitleStyle.Render("Score Breakdown"),
		"",
		fmt.Sprintf("Relevance:      %6.1f", r.Relevance),
		fmt.Sprintf("Quality:        %6d", q.Final),
		fmt.Sprintf("  length        %+6d", q.Length),
		fmt.Sprintf("  clickbait     %+6d", q.Clickbait),
		fmt.Sprintf("  personal      %+6d", q.Personal),
		fmt.Sprintf("Recency:        %6d", r.Recency),
		"",
		fmt.Sprintf("Final:          %6.1f", r.Final),
	}
	return previewBodyStyle.Render(strings.Join(lines, "\n"))
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
