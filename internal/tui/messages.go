package tui

import (
	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/search"
)

type resultsMsg struct {
	query   string
	results []search.Result
}

type errMsg struct {
	err error
}

type refreshDoneMsg struct {
	corpus []article.Article
	err    error
}
