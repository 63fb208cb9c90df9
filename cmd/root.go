package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/config"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/store"
	"github.com/matheuskafuri/blogsearch/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagSince   string
	flagRefresh bool
	flagQuery   string
	flagConfig  string
	flagDB      string
)

var rootCmd = &cobra.Command{
	Use:   "blogsearch",
	Short: "Search the blogs you follow",
	Long:  "blogsearch aggregates posts from a list of blogs and serves a ranked full-text search over them, in the terminal or over HTTP.",
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the article database")

	rootCmd.Flags().StringVar(&flagSince, "since", "", "only show articles from the last duration (e.g., 7d, 24h)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force refresh feeds before launching")
	rootCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "start with this search")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blogsearch %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return
		}
		if res := update.Check(cmd.Context(), version); res != nil {
			fmt.Printf("A newer version is available: %s\n", res.LatestVersion)
			if res.URL != "" {
				fmt.Println(res.URL)
			}
		} else {
			fmt.Println("You are up to date.")
		}
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.CachePath()
}

func openStore() (*store.Store, error) {
	db, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return db, nil
}

// cliLogger writes to stderr so command output stays clean. LOG_LEVEL
// overrides the warn default.
func cliLogger() *slog.Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return logger.New(os.Stderr, logger.ParseLevel(level))
}

// loadCorpus reads the stored articles, optionally limited to those published
// within since (e.g. "7d").
func loadCorpus(db *store.Store, since string) ([]article.Article, error) {
	var opts store.QueryOpts
	if since != "" {
		d, err := parseSince(since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since value: %w", err)
		}
		opts.Since = time.Now().UTC().Add(-d).Format(article.TimestampLayout)
	}
	corpus, err := db.Articles(opts)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	return corpus, nil
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
