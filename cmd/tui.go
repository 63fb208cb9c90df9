package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the latest articles",
	Long:  "Open blogsearch straight into the article list, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), true)
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	return runApp(cmd.Context(), false)
}

func runApp(ctx context.Context, browse bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if flagRefresh || db.NeedsRefresh(cfg.RefreshDuration()) {
		fmt.Println("Fetching feeds...")
		fetchCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		res, err := refresh(fetchCtx, cfg, db, cliLogger(), nil)
		cancel()
		if err != nil {
			return err
		}
		for _, e := range res.Errors {
			fmt.Printf("  [warn] %v\n", e)
		}
	}

	corpus, err := loadCorpus(db, flagSince)
	if err != nil {
		return err
	}

	return tui.Run(tui.RunOpts{
		Corpus: corpus,
		Limit:  cfg.DefaultLimit(),
		Query:  flagQuery,
		// the TUI owns the terminal, so refresh logs are dropped
		Refresh: func(ctx context.Context) ([]article.Article, error) {
			if _, err := refresh(ctx, cfg, db, logger.Discard(), nil); err != nil {
				return nil, err
			}
			return loadCorpus(db, flagSince)
		},
		BrowseMode: browse,
	})
}
