package feed

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/config"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/mmcdole/gofeed"
)

const (
	summaryMaxRunes = 1000
	acceptHeader    = "application/rss+xml, application/xml, text/xml"
)

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]article.Article, error)
}

// Options tune how feeds are requested.
type Options struct {
	Timeout     time.Duration
	Retries     int
	RetryDelay  time.Duration
	UserAgent   string
	Concurrency int
	Interval    time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:     cfg.FetchTimeout(),
		Retries:     cfg.FetchRetries(),
		RetryDelay:  cfg.RetryDelay(),
		UserAgent:   cfg.UserAgent(),
		Concurrency: cfg.FetchConcurrency(),
		Interval:    cfg.FetchInterval(),
	}
}

// HTTPError is a non-2xx feed response. It is retried.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

type RSSFetcher struct {
	client *http.Client
	opts   Options
	log    *slog.Logger
	now    func() time.Time
}

func NewRSSFetcher(opts Options, log *slog.Logger) *RSSFetcher {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Retries <= 0 {
		opts.Retries = 1
	}
	return &RSSFetcher{
		client: &http.Client{},
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]article.Article, error) {
	feed, err := f.fetchFeed(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	fetchedAt := f.now().UTC().Format(article.TimestampLayout)
	articles := make([]article.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, toArticle(item, source, fetchedAt))
	}
	return articles, nil
}

func (f *RSSFetcher) fetchFeed(ctx context.Context, source config.Source) (*gofeed.Feed, error) {
	attempt := 0
	op := func() (*gofeed.Feed, error) {
		attempt++
		f.log.Debug("fetching feed", "source", source.Name, "attempt", attempt)
		return f.get(ctx, source.URL)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(&linearBackOff{step: f.opts.RetryDelay}),
		backoff.WithMaxTries(uint(f.opts.Retries)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			f.log.Warn("feed fetch failed, retrying",
				"source", source.Name, "attempt", attempt, "wait", wait, "error", err)
		}),
	)
}

func (f *RSSFetcher) get(ctx context.Context, url string) (*gofeed.Feed, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	// A body that does not parse will not parse on the next attempt either.
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parsing feed: %w", err))
	}
	return feed, nil
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

func toArticle(item *gofeed.Item, source config.Source, fetchedAt string) article.Article {
	summary := cleanText(item.Description)
	if content := cleanText(item.Content); utf8.RuneCountInString(content) > utf8.RuneCountInString(summary) {
		summary = clip(content, summaryMaxRunes)
	}

	tags := make([]string, 0, len(item.Categories))
	tags = append(tags, item.Categories...)

	return article.Article{
		ID:             articleID(item.Link, item.Title),
		BlogName:       source.Name,
		BlogURL:        source.BlogURL(),
		Title:          cleanText(item.Title),
		Link:           item.Link,
		Summary:        summary,
		Published:      published(item),
		Author:         author(item),
		Tags:           tags,
		QualitySignals: qualitySignals(item.Description),
		FetchedAt:      fetchedAt,
	}
}

// articleID is stable across fetches of the same post.
func articleID(link, title string) string {
	h := md5.Sum([]byte(link + title))
	return hex.EncodeToString(h[:])[:12]
}

func published(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(article.TimestampLayout)
	}
	return item.Published
}

func author(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	return ""
}

// clip keeps the first n runes of s, marking the cut with "...".
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
