package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FF8C00"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#B4B4B4"}
	colorText      = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#EEEEEE"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#666666"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#5FAFD7"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#3A3A3A"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F4F4F4", Dark: "#1C1C1C"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#262626"}
	colorBlog      = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#87D787"}
	colorScoreHigh = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#5FD75F"}
	colorScoreMid  = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#D7AF5F"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	headerInfoStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorText)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	itemSourceStyle = lipgloss.NewStyle().
			Foreground(colorBlog)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	previewSourceStyle = lipgloss.NewStyle().
				Foreground(colorBlog).
				MarginBottom(1)

	previewBodyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	previewLinkStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Underline(true).
				MarginTop(1)

	breakdownTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(colorPrimary).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorSurface).
				Padding(0, 1)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorSurface)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorSecondary).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 3)
)

// paneStyle is the bordered box of the list and preview panes.
func paneStyle(active bool) lipgloss.Style {
	border := colorBorder
	if active {
		border = colorPrimary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// scoreStyle colors a final score: 70 and up is a strong match.
func scoreStyle(final float64) lipgloss.Style {
	switch {
	case final >= 70:
		return lipgloss.NewStyle().Foreground(colorScoreHigh).Bold(true)
	case final >= 50:
		return lipgloss.NewStyle().Foreground(colorScoreMid)
	default:
		return itemTimeStyle
	}
}
