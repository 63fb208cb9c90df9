package article

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DateLayout is the layout of the date prefix of Published.
	DateLayout = "2006-01-02"
	// TimestampLayout is how the fetcher writes Published and FetchedAt.
	TimestampLayout = "2006-01-02T15:04:05"
)

// Article is a single fetched, cleaned blog post.
// Published and Author are optional; the empty string means absent.
type Article struct {
	ID             string             `json:"id"`
	BlogName       string             `json:"blog_name"`
	BlogURL        string             `json:"blog_url"`
	Title          string             `json:"title"`
	Link           string             `json:"link"`
	Summary        string             `json:"summary"`
	Published      string             `json:"published"`
	Author         string             `json:"author"`
	Tags           []string           `json:"tags"`
	QualitySignals map[string]float64 `json:"quality_signals"`
	FetchedAt      string             `json:"fetched_at"`
}

// UnmarshalJSON accepts null for any string field, which older corpus files
// contain after a round trip through the search engine indexer.
func (a *Article) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             *string            `json:"id"`
		BlogName       *string            `json:"blog_name"`
		BlogURL        *string            `json:"blog_url"`
		Title          *string            `json:"title"`
		Link           *string            `json:"link"`
		Summary        *string            `json:"summary"`
		Published      *string            `json:"published"`
		Author         *string            `json:"author"`
		Tags           []string           `json:"tags"`
		QualitySignals map[string]float64 `json:"quality_signals"`
		FetchedAt      *string            `json:"fetched_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Article{
		ID:             deref(raw.ID),
		BlogName:       deref(raw.BlogName),
		BlogURL:        deref(raw.BlogURL),
		Title:          deref(raw.Title),
		Link:           deref(raw.Link),
		Summary:        deref(raw.Summary),
		Published:      deref(raw.Published),
		Author:         deref(raw.Author),
		Tags:           raw.Tags,
		QualitySignals: raw.QualitySignals,
		FetchedAt:      deref(raw.FetchedAt),
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PublishedDate parses the YYYY-MM-DD prefix of Published in the local zone.
// ok is false when Published is absent or malformed.
func (a Article) PublishedDate() (t time.Time, ok bool) {
	if len(a.Published) < len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, a.Published[:len(DateLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortByPublished orders articles newest first by their published string,
// matching the order the fetcher writes the corpus in.
func SortByPublished(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published > articles[j].Published
	})
}

// LoadJSON reads a corpus file: a JSON array of articles.
func LoadJSON(path string) ([]Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	return articles, nil
}

// WriteJSON writes the corpus as an indented JSON array, creating parent dirs.
func WriteJSON(path string, articles []Article) error {
	if articles == nil {
		articles = []Article{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating corpus dir: %w", err)
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
