package search

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

const (
	// DefaultLimit is the result count used by hosts that get no limit.
	DefaultLimit = 20
	// MaxLimit caps the number of results of a single search.
	MaxLimit = 100

	// MinRelevance is the exclusive lower bound a candidate must exceed.
	MinRelevance = 60.0

	titleExactBonus   = 20
	summaryExactBonus = 10

	weightRelevance = 0.6
	weightQuality   = 0.3
)

// ErrInvalidLimit is returned for a negative result limit.
var ErrInvalidLimit = errors.New("search: limit must not be negative")

// Result is a ranked article with its score components.
type Result struct {
	Article   article.Article
	Relevance float64
	Quality   int
	Recency   int
	Final     float64
}

// Engine ranks a fixed corpus. It is immutable after NewEngine and safe for
// concurrent use.
type Engine struct {
	corpus []article.Article
	index  *Index
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for recency.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine copies the corpus and builds its inverted index.
func NewEngine(corpus []article.Article, opts ...Option) *Engine {
	c := make([]article.Article, len(corpus))
	copy(c, corpus)
	e := &Engine{
		corpus: c,
		index:  BuildIndex(c),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Len returns the corpus size.
func (e *Engine) Len() int {
	return len(e.corpus)
}

// Corpus returns the articles in load order. The slice must not be modified.
func (e *Engine) Corpus() []article.Article {
	return e.corpus
}

// Index returns the inverted index over the corpus.
func (e *Engine) Index() *Index {
	return e.index
}

// Search returns at most limit articles matching query, best first. Limits
// above MaxLimit are capped.
func (e *Engine) Search(query string, limit int) ([]article.Article, error) {
	results, err := e.Score(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]article.Article, len(results))
	for i, r := range results {
		out[i] = r.Article
	}
	return out, nil
}

// Score is Search with the score breakdown of every returned article.
// Ties on the final score are broken by article id.
func (e *Engine) Score(query string, limit int) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	limit = min(limit, MaxLimit)

	q := strings.ToLower(query)
	now := e.now()

	var results []Result
	for _, pos := range e.index.Candidates(query) {
		a := e.corpus[pos]
		rel := Relevance(q, a)
		if rel <= MinRelevance {
			continue
		}
		r := Result{
			Article:   a,
			Relevance: rel,
			Quality:   QualityScore(a),
			Recency:   RecencyBonus(a, now),
		}
		r.Final = r.Relevance*weightRelevance + float64(r.Quality)*weightQuality + float64(r.Recency)
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Final != results[j].Final {
			return results[i].Final > results[j].Final
		}
		return results[i].Article.ID < results[j].Article.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// Relevance scores how well query matches the article text: the best partial
// ratio against title or summary plus bonuses for literal containment.
func Relevance(query string, a article.Article) float64 {
	q := strings.ToLower(query)
	title := strings.ToLower(a.Title)
	summary := strings.ToLower(a.Summary)

	score := math.Max(PartialRatio(q, title), PartialRatio(q, summary))
	if strings.Contains(title, q) {
		score += titleExactBonus
	}
	if strings.Contains(summary, q) {
		score += summaryExactBonus
	}
	return score
}

// RecencyBonus rewards articles published within the last 30 or 90 days.
// A missing or malformed date earns nothing.
func RecencyBonus(a article.Article, now time.Time) int {
	pub, ok := a.PublishedDate()
	if !ok {
		return 0
	}
	days := calendarDays(pub, now)
	switch {
	case days < 30:
		return 10
	case days < 90:
		return 5
	default:
		return 0
	}
}

// calendarDays counts whole days between the dates of from and to, ignoring
// the clock so that DST shifts cannot move an article across a bucket edge.
func calendarDays(from, to time.Time) int {
	to = to.In(from.Location())
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
