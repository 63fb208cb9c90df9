// Package stats summarizes a corpus by blog.
package stats

import (
	"sort"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

type Summary struct {
	TotalArticles   int            `json:"total_articles"`
	TotalBlogs      int            `json:"total_blogs"`
	ArticlesPerBlog map[string]int `json:"articles_per_blog"`
	LastUpdated     string         `json:"last_updated"`
}

// BlogInfo is one blog's article count and newest published value. Latest is
// nil when none of the blog's articles has a published date.
type BlogInfo struct {
	Count  int     `json:"count"`
	Latest *string `json:"latest"`
}

// BlogCount pairs a blog with its article count.
type BlogCount struct {
	Name  string
	Count int
}

// Summarize counts articles per blog. LastUpdated is left for the caller.
func Summarize(corpus []article.Article) Summary {
	counts := make(map[string]int)
	for _, a := range corpus {
		counts[a.BlogName]++
	}
	return Summary{
		TotalArticles:   len(corpus),
		TotalBlogs:      len(counts),
		ArticlesPerBlog: counts,
	}
}

// Blogs reports, per blog, how many articles it has and the greatest
// published string among them.
func Blogs(corpus []article.Article) map[string]BlogInfo {
	out := make(map[string]BlogInfo)
	for _, a := range corpus {
		info := out[a.BlogName]
		info.Count++
		if a.Published != "" && (info.Latest == nil || a.Published > *info.Latest) {
			pub := a.Published
			info.Latest = &pub
		}
		out[a.BlogName] = info
	}
	return out
}

// TopBlogs returns up to n blogs with the most articles, ties by name.
// n <= 0 returns all of them.
func TopBlogs(corpus []article.Article, n int) []BlogCount {
	counts := Summarize(corpus).ArticlesPerBlog

	sorted := make([]BlogCount, 0, len(counts))
	for name, count := range counts {
		sorted = append(sorted, BlogCount{name, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Name < sorted[j].Name
	})

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
