package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type filterBar struct {
	blogs        []string
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar(blogs []string) filterBar {
	return filterBar{
		blogs:  blogs,
		active: make(map[string]bool),
	}
}

func (f *filterBar) toggle(blog string) {
	if f.active[blog] {
		delete(f.active, blog)
	} else {
		f.active[blog] = true
	}
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.blogs) {
		f.toggle(f.blogs[f.filterCursor])
	}
}

func (f *filterBar) activeBlogs() []string {
	if len(f.active) == 0 {
		return nil // nil = all blogs
	}
	var out []string
	for _, s := range f.blogs {
		if f.active[s] {
			out = append(out, s)
		}
	}
	return out
}

func (f *filterBar) activeLabel() string {
	active := f.activeBlogs()
	if active == nil {
		return "All"
	}
	return strings.Join(active, ", ")
}

// allows reports whether a result from blog passes the filter.
func (f *filterBar) allows(blog string) bool {
	return len(f.active) == 0 || f.active[blog]
}

func (f *filterBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	// "All" tab
	if len(f.active) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, s := range f.blogs {
		style := tabInactiveStyle
		if f.active[s] {
			style = tabActiveStyle
		}
		label := s
		if f.filterMode && i == f.filterCursor {
			label = "[" + s + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
