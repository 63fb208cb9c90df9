package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/browser"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/matheuskafuri/blogsearch/internal/stats"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeHome mode = iota
	modeNormal
	modeSearch
	modeFilter
	modeHelp
)

// browseLimit caps the latest-articles list shown without a query.
const browseLimit = 200

type App struct {
	engine  *search.Engine
	results []search.Result
	query   string
	limit   int
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	refresh func(ctx context.Context) ([]article.Article, error)
	open    func(url string) error

	// State
	refreshing    bool
	previewScroll int
	showBreakdown bool
	err           error
	now           func() time.Time
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Corpus []article.Article
	Limit  int
	// Refresh fetches feeds and returns the updated corpus. Optional.
	Refresh    func(ctx context.Context) ([]article.Article, error)
	Query      string
	BrowseMode bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	limit := opts.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	a := &App{
		engine:      search.NewEngine(opts.Corpus),
		limit:       limit,
		searchInput: ti,
		spinner:     sp,
		refresh:     opts.Refresh,
		open:        browser.Open,
		now:         time.Now,
		mode:        modeHome,
	}
	a.filterBar = newFilterBar(blogNames(opts.Corpus))

	if opts.Query != "" {
		a.searchInput.SetValue(opts.Query)
		a.mode = modeNormal
	} else if opts.BrowseMode {
		a.mode = modeNormal
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.mode == modeNormal {
		return a.searchCmd()
	}
	return nil
}

// searchCmd captures the current query and engine in the closure to avoid
// races with later key presses.
func (a *App) searchCmd() tea.Cmd {
	query := strings.TrimSpace(a.searchInput.Value())
	engine := a.engine
	limit := a.limit
	return func() tea.Msg {
		if query == "" {
			return resultsMsg{results: latest(engine.Corpus(), browseLimit)}
		}
		results, err := engine.Score(query, limit)
		if err != nil {
			return errMsg{err: err}
		}
		return resultsMsg{query: query, results: results}
	}
}

func (a *App) doRefresh() tea.Cmd {
	refresh := a.refresh
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		corpus, err := refresh(ctx)
		return refreshDoneMsg{corpus: corpus, err: err}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case resultsMsg:
		a.query = msg.query
		a.results = a.filtered(msg.results)
		a.cursor = 0
		a.previewScroll = 0
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case refreshDoneMsg:
		a.refreshing = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.engine = search.NewEngine(msg.corpus)
		a.filterBar = newFilterBar(blogNames(msg.corpus))
		return a, a.searchCmd()

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.results)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if r := a.selected(); r != nil {
			return a, a.openCmd(r.Article.Link)
		}
		return a, nil
	case "/":
		return a, a.startSearch()
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "i":
		a.showBreakdown = !a.showBreakdown
		return a, nil
	case "r":
		if a.refresh != nil && !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(a.doRefresh(), a.spinner.Tick)
		}
		return a, nil
	case "h":
		a.mode = modeHome
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) startSearch() tea.Cmd {
	a.mode = modeSearch
	a.searchInput.Focus()
	return textinput.Blink
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/", "s":
		return a, a.startSearch()
	case "e", "enter":
		a.mode = modeNormal
		return a, a.searchCmd()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		return a, a.searchCmd()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, a.searchCmd()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		if a.filterBar.filterCursor > 0 {
			a.filterBar.filterCursor--
		}
		return a, nil
	case "right", "l":
		if a.filterBar.filterCursor < len(a.filterBar.blogs)-1 {
			a.filterBar.filterCursor++
		}
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		return a, a.searchCmd()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.filterBar.blogs) {
			a.filterBar.toggle(a.filterBar.blogs[idx])
			return a, a.searchCmd()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) filtered(results []search.Result) []search.Result {
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		if a.filterBar.allows(r.Article.BlogName) {
			out = append(out, r)
		}
	}
	return out
}

func (a *App) selected() *search.Result {
	if a.cursor < 0 || a.cursor >= len(a.results) {
		return nil
	}
	return &a.results[a.cursor]
}

// latest wraps the n newest articles as unscored results.
func latest(corpus []article.Article, n int) []search.Result {
	sorted := make([]article.Article, len(corpus))
	copy(sorted, corpus)
	article.SortByPublished(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]search.Result, len(sorted))
	for i, art := range sorted {
		out[i] = search.Result{Article: art}
	}
	return out
}

func blogNames(corpus []article.Article) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range corpus {
		if !seen[a.BlogName] {
			seen[a.BlogName] = true
			names = append(names, a.BlogName)
		}
	}
	sort.Strings(names)
	return names
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  blogsearch")
	}

	if a.mode == modeHome {
		corpus := a.engine.Corpus()
		return a.withBottomBar(
			renderHomeScreen(a.width, a.height, stats.Summarize(corpus), stats.TopBlogs(corpus, 5)),
			"/ search  e browse  q quit",
		)
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  h home  q quit")
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := max(a.height-headerHeight-filterHeight-statusHeight-4, 3) // borders

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1 // gap

	// Header
	headerLeft := headerStyle.Render("blogsearch")
	headerRight := headerInfoStyle.Render(fmt.Sprintf("%d articles indexed", a.engine.Len()))
	headerGap := max(a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight), 0)
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Filter bar
	filter := a.filterBar.render(a.width)

	// Search bar (replaces filter when searching)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	now := a.now()

	// List pane
	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.results, a.cursor, contentHeight, innerListW, now)

	listPane := paneStyle(a.focus == focusList).Width(listWidth - 2).Height(contentHeight).Render(listContent)

	// Preview pane
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(a.selected(), innerPreviewW, contentHeight, a.previewScroll, a.showBreakdown)

	previewPane := paneStyle(a.focus == focusPreview).Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	// Join panes
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	// Status bar
	status := renderStatusBar(
		len(a.results),
		a.query,
		a.filterBar.activeLabel(),
		a.width,
		a.mode == modeSearch,
		a.refreshing,
	)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}

	// Error display
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("blogsearch")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate result list\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  /             Search articles\n" +
		"  o, enter      Open article in browser\n" +
		"  i             Toggle score breakdown\n" +
		"  r             Refresh feeds\n" +
		"  f             Toggle blog filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between blogs\n" +
		"  space/enter   Toggle blog\n" +
		"  1-9           Toggle blog by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  h             Go to home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
