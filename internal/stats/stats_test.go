package stats

import (
	"testing"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

func corpus() []article.Article {
	return []article.Article{
		{ID: "1", BlogName: "Dan Luu", Published: "2024-01-01T00:00:00"},
		{ID: "2", BlogName: "Julia Evans", Published: "2024-03-01T00:00:00"},
		{ID: "3", BlogName: "Julia Evans", Published: "2024-05-01T00:00:00"},
		{ID: "4", BlogName: "Julia Evans"},
		{ID: "5", BlogName: "Drew DeVault"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(corpus())
	if s.TotalArticles != 5 {
		t.Errorf("expected 5 articles, got %d", s.TotalArticles)
	}
	if s.TotalBlogs != 3 {
		t.Errorf("expected 3 blogs, got %d", s.TotalBlogs)
	}
	if s.ArticlesPerBlog["Julia Evans"] != 3 || s.ArticlesPerBlog["Dan Luu"] != 1 {
		t.Errorf("unexpected per-blog counts %v", s.ArticlesPerBlog)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalArticles != 0 || s.TotalBlogs != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.ArticlesPerBlog == nil {
		t.Error("articles_per_blog should encode as {}, not null")
	}
}

func TestBlogs(t *testing.T) {
	blogs := Blogs(corpus())

	julia := blogs["Julia Evans"]
	if julia.Count != 3 {
		t.Errorf("expected 3 Julia Evans articles, got %d", julia.Count)
	}
	if julia.Latest == nil || *julia.Latest != "2024-05-01T00:00:00" {
		t.Errorf("unexpected latest %v", julia.Latest)
	}

	drew := blogs["Drew DeVault"]
	if drew.Count != 1 || drew.Latest != nil {
		t.Errorf("expected undated blog with nil latest, got %+v", drew)
	}
}

func TestTopBlogs(t *testing.T) {
	top := TopBlogs(corpus(), 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 blogs, got %d", len(top))
	}
	if top[0] != (BlogCount{"Julia Evans", 3}) {
		t.Errorf("unexpected first %+v", top[0])
	}
	// tie on count breaks by name
	if top[1] != (BlogCount{"Dan Luu", 1}) {
		t.Errorf("unexpected second %+v", top[1])
	}

	if all := TopBlogs(corpus(), 0); len(all) != 3 {
		t.Errorf("expected all 3 blogs, got %d", len(all))
	}
}
