package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/spf13/cobra"
)

var (
	flagLimit   int
	flagJSON    bool
	flagExplain bool
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C00"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored articles from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		corpus, err := loadCorpus(db, flagSince)
		if err != nil {
			return err
		}

		engine := search.NewEngine(corpus)
		results, err := engine.Score(strings.Join(args, " "), flagLimit)
		if err != nil {
			return err
		}

		if flagJSON {
			return writeJSON(os.Stdout, results)
		}
		printResults(os.Stdout, results, flagExplain)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&flagLimit, "limit", "n", search.DefaultLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "print results as a JSON array of articles")
	searchCmd.Flags().BoolVar(&flagExplain, "explain", false, "show the score breakdown of each result")
	searchCmd.Flags().StringVar(&flagSince, "since", "", "only search articles from the last duration (e.g., 30d)")
}

func writeJSON(w io.Writer, results []search.Result) error {
	articles := make([]any, len(results))
	for i, r := range results {
		articles[i] = r.Article
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

func printResults(w io.Writer, results []search.Result, explain bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}
	for i, r := range results {
		a := r.Article
		fmt.Fprintf(w, "%2d. %s\n", i+1, titleStyle.Render(a.Title))

		meta := a.BlogName
		if pub, ok := a.PublishedDate(); ok {
			meta += " · " + pub.Format("Jan 2, 2006")
		}
		fmt.Fprintf(w, "    %s\n", metaStyle.Render(meta))
		fmt.Fprintf(w, "    %s\n", linkStyle.Render(a.Link))
		if explain {
			fmt.Fprintf(w, "    %s\n", metaStyle.Render(fmt.Sprintf(
				"score %.1f = relevance %.1f × 0.6 + quality %d × 0.3 + recency %d",
				r.Final, r.Relevance, r.Quality, r.Recency)))
		}
	}
}
