package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/stats"
	"github.com/matheuskafuri/blogsearch/internal/store"
	"github.com/spf13/cobra"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the local store",
	Long: `Delete stored articles older than the retention period and reclaim disk space.

Uses the retention value from config (default: 365d) unless overridden with --older-than.`,
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

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dbPath()
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		count, size, err := db.Stats(path)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Store: %s\n", path)
		fmt.Printf("Articles: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))

		md, err := db.Metadata()
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Println("Last fetch: never")
		case err != nil:
			return fmt.Errorf("reading metadata: %w", err)
		default:
			f := md.FetchStats
			fmt.Printf("Last fetch: %s (%d blogs, %d failed; %d new, %d updated)\n",
				md.LastUpdated, f.BlogsProcessed, f.BlogsFailed, f.NewArticles, f.UpdatedArticles)
		}

		corpus, err := loadCorpus(db, "")
		if err != nil {
			return err
		}
		top := stats.TopBlogs(corpus, 10)
		if len(top) > 0 {
			fmt.Println("Top blogs:")
			for _, b := range top {
				fmt.Printf("  %-28s %5d\n", b.Name, b.Count)
			}
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
