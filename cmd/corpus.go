package cmd

import (
	"fmt"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/spf13/cobra"
)

var flagMerge bool

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the stored corpus to a JSON file",
	Long:  "Write every stored article, newest first, as an indented JSON array (the index.json corpus format).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		corpus, err := loadCorpus(db, "")
		if err != nil {
			return err
		}
		if err := article.WriteJSON(args[0], corpus); err != nil {
			return err
		}
		fmt.Printf("Exported %d article(s) to %s.\n", len(corpus), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Load a JSON corpus file into the store",
	Long: `Replace the stored corpus with the articles of a JSON corpus file.
With --merge, the file is merged into the store instead, deduplicated by id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := article.LoadJSON(args[0])
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if !flagMerge {
			if err := db.ReplaceAll(corpus); err != nil {
				return fmt.Errorf("replacing articles: %w", err)
			}
			fmt.Printf("Imported %d article(s).\n", len(corpus))
			return nil
		}

		stats, err := db.Merge(corpus)
		if err != nil {
			return fmt.Errorf("merging articles: %w", err)
		}
		fmt.Printf("Articles: %d new, %d updated, %d unchanged\n", stats.NewArticles, stats.UpdatedArticles, stats.SkippedArticles)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&flagMerge, "merge", false, "merge into the store instead of replacing it")
}
