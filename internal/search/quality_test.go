package search

import (
	"strings"
	"testing"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

func TestQualityClickbaitShortSummary(t *testing.T) {
	a := article.Article{Title: "Amazing shocking news", Summary: "short"}
	if got := QualityScore(a); got != 40 {
		t.Errorf("expected 40, got %d", got)
	}
}

func TestQualityLengthBands(t *testing.T) {
	tests := []struct {
		chars int
		want  int
	}{
		{0, 50},
		{200, 50},
		{201, 58},
		{500, 58},
		{501, 65},
		{600, 65},
	}
	for _, tt := range tests {
		a := article.Article{Title: "Go tips", Summary: strings.Repeat("x", tt.chars)}
		if got := QualityScore(a); got != tt.want {
			t.Errorf("summary of %d chars: got %d, want %d", tt.chars, got, tt.want)
		}
	}
}

func TestQualityLengthCountsCharacters(t *testing.T) {
	// 150 two-byte runes: 300 bytes but only 150 characters
	a := article.Article{Title: "Go tips", Summary: strings.Repeat("é", 150)}
	if got := QualityScore(a); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestQualityPersonalVoice(t *testing.T) {
	a := article.Article{Title: "My experience", Summary: "I think we did our best"}
	b := QualityWithBreakdown(a)
	// "my ", "experience", "i ", "we ", "our "
	if b.Personal != 10 {
		t.Errorf("expected personal bonus 10, got %d", b.Personal)
	}
	if b.Final != 60 {
		t.Errorf("expected 60, got %d", b.Final)
	}
}

func TestQualityPersonalMonotonicAndCapped(t *testing.T) {
	prev := -1
	for n := 0; n <= 15; n++ {
		a := article.Article{Summary: strings.Repeat("we ", n)}
		got := QualityScore(a)
		if got < prev {
			t.Fatalf("score decreased at %d indicators: %d < %d", n, got, prev)
		}
		prev = got
		if want := 50 + min(2*n, 20); got != want {
			t.Errorf("%d indicators: got %d, want %d", n, got, want)
		}
	}
}

func TestQualityClickbaitOnlyTitle(t *testing.T) {
	a := article.Article{Title: "Plain title", Summary: "an amazing result"}
	if got := QualityWithBreakdown(a).Clickbait; got != 0 {
		t.Errorf("clickbait in summary should not be penalized, got %d", got)
	}
	a = article.Article{Title: "You Won't Believe This Trick"}
	if got := QualityWithBreakdown(a).Clickbait; got != -10 {
		t.Errorf("expected -10 penalty, got %d", got)
	}
}

func TestQualityEmptyArticle(t *testing.T) {
	if got := QualityScore(article.Article{}); got != 50 {
		t.Errorf("expected base score 50, got %d", got)
	}
}
