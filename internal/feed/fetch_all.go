package feed

import (
	"context"
	"log/slog"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/config"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type FetchResult struct {
	Articles  []article.Article
	Errors    []error
	Processed int
	Failed    int
}

// Runner fetches many sources with bounded parallelism, spacing request starts
// by Options.Interval. Metrics and Log may be nil.
type Runner struct {
	Fetcher Fetcher
	Options Options
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// FetchAll fetches every source. A failing source is recorded and skipped;
// results keep the order of sources.
func (r *Runner) FetchAll(ctx context.Context, sources []config.Source) FetchResult {
	log := r.Log
	if log == nil {
		log = logger.Discard()
	}

	limit := rate.Inf
	if r.Options.Interval > 0 {
		limit = rate.Every(r.Options.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	perSource := make([][]article.Article, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(max(r.Options.Concurrency, 1))
	for i, src := range sources {
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				errs[i] = err
				return nil
			}
			articles, err := r.Fetcher.Fetch(ctx, src)
			if err != nil {
				errs[i] = err
				return nil
			}
			perSource[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	var result FetchResult
	for i, src := range sources {
		status := metrics.StatusSuccess
		if errs[i] != nil {
			status = metrics.StatusFailure
			result.Failed++
			result.Errors = append(result.Errors, errs[i])
			log.Warn("feed failed", "source", src.Name, "error", errs[i])
		} else {
			result.Processed++
			result.Articles = append(result.Articles, perSource[i]...)
			log.Info("feed fetched", "source", src.Name, "articles", len(perSource[i]))
		}
		if r.Metrics != nil {
			r.Metrics.IncFeedFetch(src.Name, status)
		}
	}
	return result
}

// FetchAll fetches sources with an RSSFetcher configured from opts.
func FetchAll(ctx context.Context, sources []config.Source, opts Options, log *slog.Logger) FetchResult {
	r := &Runner{Fetcher: NewRSSFetcher(opts, log), Options: opts, Log: log}
	return r.FetchAll(ctx, sources)
}
