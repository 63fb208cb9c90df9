package search

import (
	"strings"
	"unicode/utf8"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

const (
	qualityBase      = 50
	longSummaryBonus = 15
	midSummaryBonus  = 8
	clickbaitPenalty = 10
	personalPerHit   = 2
	personalBonusCap = 20
	longSummaryChars = 500
	midSummaryChars  = 200
)

var clickbaitPhrases = []string{"amazing", "shocking", "unbelievable", "you won't believe"}

// personalIndicators are counted as raw substrings, so "i " also matches the
// tail of "multi ".
var personalIndicators = []string{"i ", "my ", "me ", "we ", "our ", "personal", "experience"}

// QualityBreakdown shows how each heuristic contributed to a quality score.
type QualityBreakdown struct {
	Length    int
	Clickbait int
	Personal  int
	Final     int
}

// QualityScore estimates the writing quality of an article. The result is
// never negative and has no upper bound.
func QualityScore(a article.Article) int {
	return QualityWithBreakdown(a).Final
}

// QualityWithBreakdown computes the quality score with component details.
func QualityWithBreakdown(a article.Article) QualityBreakdown {
	b := QualityBreakdown{
		Length:    lengthBonus(a.Summary),
		Clickbait: clickbaitScore(a.Title),
		Personal:  personalBonus(a.Title, a.Summary),
	}
	b.Final = max(qualityBase+b.Length+b.Clickbait+b.Personal, 0)
	return b
}

func lengthBonus(summary string) int {
	n := utf8.RuneCountInString(summary)
	switch {
	case n > longSummaryChars:
		return longSummaryBonus
	case n > midSummaryChars:
		return midSummaryBonus
	default:
		return 0
	}
}

func clickbaitScore(title string) int {
	title = strings.ToLower(title)
	for _, p := range clickbaitPhrases {
		if strings.Contains(title, p) {
			return -clickbaitPenalty
		}
	}
	return 0
}

func personalBonus(title, summary string) int {
	text := strings.ToLower(title + " " + summary)
	count := 0
	for _, ind := range personalIndicators {
		count += strings.Count(text, ind)
	}
	return min(count*personalPerHit, personalBonusCap)
}
