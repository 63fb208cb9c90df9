package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheuskafuri/blogsearch/internal/config"
	"github.com/matheuskafuri/blogsearch/internal/feed"
	"github.com/matheuskafuri/blogsearch/internal/metrics"
	"github.com/matheuskafuri/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var flagNoPrune bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all enabled feeds into the local store",
	Long: `Fetch every enabled source, merge new and updated articles into the
store and record the run's statistics. Articles older than the retention
period are pruned afterwards unless --no-prune is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := refresh(ctx, cfg, db, cliLogger(), nil)
		if err != nil {
			return err
		}

		for _, e := range res.Errors {
			fmt.Printf("  [warn] %v\n", e)
		}
		s := res.Stats
		fmt.Printf("Blogs: %d fetched, %d failed\n", s.BlogsProcessed, s.BlogsFailed)
		fmt.Printf("Articles: %d new, %d updated, %d unchanged\n", s.NewArticles, s.UpdatedArticles, s.SkippedArticles)
		if res.Pruned > 0 {
			fmt.Printf("Pruned %d article(s) older than %s.\n", res.Pruned, formatDuration(cfg.RetentionDuration()))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&flagNoPrune, "no-prune", false, "keep articles older than the retention period")
}

type refreshResult struct {
	Stats  store.FetchStats
	Errors []error
	Pruned int64
}

// refresh runs one ingestion: fetch, merge, record metadata, prune.
// m may be nil.
func refresh(ctx context.Context, cfg *config.Config, db *store.Store, log *slog.Logger, m *metrics.Metrics) (refreshResult, error) {
	opts := feed.OptionsFromConfig(cfg)
	runner := &feed.Runner{
		Fetcher: feed.NewRSSFetcher(opts, log),
		Options: opts,
		Metrics: m,
		Log:     log,
	}

	sources := cfg.EnabledSources()
	fetched := runner.FetchAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		return refreshResult{}, fmt.Errorf("fetching feeds: %w", err)
	}

	stats, err := db.Merge(fetched.Articles)
	if err != nil {
		return refreshResult{}, fmt.Errorf("storing articles: %w", err)
	}
	stats.BlogsProcessed = fetched.Processed
	stats.BlogsFailed = fetched.Failed

	if err := db.SaveMetadata(stats, len(sources)); err != nil {
		return refreshResult{}, fmt.Errorf("saving metadata: %w", err)
	}
	if err := db.SetLastRefresh(); err != nil {
		return refreshResult{}, fmt.Errorf("saving refresh time: %w", err)
	}

	res := refreshResult{Stats: stats, Errors: fetched.Errors}
	if !flagNoPrune {
		pruned, err := db.Prune(cfg.RetentionDuration())
		if err != nil {
			return res, fmt.Errorf("pruning: %w", err)
		}
		res.Pruned = pruned
	}

	log.Info("refresh complete",
		"blogs_processed", stats.BlogsProcessed,
		"blogs_failed", stats.BlogsFailed,
		"new", stats.NewArticles,
		"updated", stats.UpdatedArticles,
		"skipped", stats.SkippedArticles,
		"pruned", res.Pruned)
	return res, nil
}
