package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matheuskafuri/blogsearch/internal/article"
)

func corpus() []article.Article {
	return []article.Article{
		{ID: "a", BlogName: "Julia Evans", Title: "Debugging DNS", Summary: "How DNS resolution works.", Link: "https://jvns.ca/dns", Published: "2024-05-01T00:00:00"},
		{ID: "b", BlogName: "Dan Luu", Title: "Latency", Summary: "Measuring input latency.", Link: "https://danluu.com/latency", Published: "2024-06-01T00:00:00"},
		{ID: "c", BlogName: "Julia Evans", Title: "DNS records", Summary: "A tour of record types.", Link: "https://jvns.ca/records", Published: "2023-01-01T00:00:00"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the returned command once, feeding its message
// back into the model.
func press(t *testing.T, a *App, s string) {
	t.Helper()
	_, cmd := a.Update(key(s))
	run(a, cmd)
}

func run(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg.(type) {
	case resultsMsg, errMsg, refreshDoneMsg:
		_, next := a.Update(msg)
		run(a, next)
	}
}

func TestBrowseShowsLatestFirst(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	run(a, a.Init())

	if len(a.results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(a.results))
	}
	if a.results[0].Article.ID != "b" {
		t.Errorf("expected newest first, got %s", a.results[0].Article.ID)
	}
}

func TestSearchFromHome(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus()})
	if a.mode != modeHome {
		t.Fatalf("expected home mode, got %v", a.mode)
	}

	press(t, a, "/")
	if a.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", a.mode)
	}
	a.searchInput.SetValue("dns")
	press(t, a, "enter")

	if a.mode != modeNormal {
		t.Errorf("expected normal mode after enter, got %v", a.mode)
	}
	if a.query != "dns" {
		t.Errorf("expected query dns, got %q", a.query)
	}
	if len(a.results) == 0 {
		t.Fatal("expected results for dns")
	}
	for _, r := range a.results {
		if r.Article.BlogName != "Julia Evans" {
			t.Errorf("unexpected result %s", r.Article.ID)
		}
		if r.Final <= 0 {
			t.Errorf("expected scored result, got %+v", r)
		}
	}
}

func TestInitialQuery(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), Query: "latency"})
	run(a, a.Init())

	if len(a.results) != 1 || a.results[0].Article.ID != "b" {
		t.Errorf("unexpected results %+v", a.results)
	}
}

func TestFilterByBlog(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	run(a, a.Init())

	press(t, a, "f")
	// blogs are sorted: Dan Luu, Julia Evans
	press(t, a, "2")
	press(t, a, "esc")

	if len(a.results) != 2 {
		t.Fatalf("expected 2 Julia Evans results, got %d", len(a.results))
	}
	for _, r := range a.results {
		if r.Article.BlogName != "Julia Evans" {
			t.Errorf("filter leaked %s", r.Article.BlogName)
		}
	}
}

func TestNavigationAndOpen(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	run(a, a.Init())

	var opened string
	a.open = func(url string) error {
		opened = url
		return nil
	}

	press(t, a, "j")
	press(t, a, "j")
	press(t, a, "j") // stays on last
	if a.cursor != 2 {
		t.Errorf("expected cursor 2, got %d", a.cursor)
	}
	press(t, a, "k")
	press(t, a, "o")
	if opened != a.results[1].Article.Link {
		t.Errorf("opened %q, want %q", opened, a.results[1].Article.Link)
	}
}

func TestOpenErrorIsShown(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	run(a, a.Init())
	a.open = func(string) error { return errors.New("no browser") }

	press(t, a, "o")
	if a.err == nil || a.err.Error() != "no browser" {
		t.Errorf("expected open error, got %v", a.err)
	}
}

func TestRefreshRebuildsEngine(t *testing.T) {
	fresh := append(corpus(), article.Article{ID: "d", BlogName: "Simon Willison", Title: "Datasette", Published: "2024-07-01T00:00:00"})
	a := NewApp(RunOpts{
		Corpus:     corpus(),
		BrowseMode: true,
		Refresh: func(context.Context) ([]article.Article, error) {
			return fresh, nil
		},
	})
	run(a, a.Init())

	_, cmd := a.Update(key("r"))
	if !a.refreshing {
		t.Fatal("expected refreshing state")
	}
	// the batch holds the refresh and the spinner tick
	_, _ = a.Update(refreshDoneMsg{corpus: fresh})
	if a.refreshing {
		t.Error("refresh should be done")
	}
	if a.engine.Len() != 4 {
		t.Errorf("expected rebuilt engine with 4 articles, got %d", a.engine.Len())
	}
	_ = cmd
}

func TestRefreshWithoutFetcherIsNoop(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	_, cmd := a.Update(key("r"))
	if cmd != nil || a.refreshing {
		t.Error("refresh without a fetcher should do nothing")
	}
}

func TestViewRenders(t *testing.T) {
	a := NewApp(RunOpts{Corpus: corpus(), BrowseMode: true})
	run(a, a.Init())
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	if a.View() == "" {
		t.Error("expected non-empty view")
	}
	press(t, a, "i")
	if !a.showBreakdown {
		t.Error("expected breakdown toggled on")
	}
	press(t, a, "h")
	if a.View() == "" {
		t.Error("expected non-empty home view")
	}
}
