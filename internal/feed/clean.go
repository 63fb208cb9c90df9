package feed

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Quality signal keys stored on every fetched article.
const (
	SignalSummaryLength   = "summary_length"
	SignalWordCount       = "word_count"
	SignalPersonalPronoun = "personal_pronoun_count"
	SignalExternalLinks   = "external_links"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	pronounRe = regexp.MustCompile(`\b(i|my|me|we|our|us)\b`)
	linkRe    = regexp.MustCompile(`https?://(?:[a-zA-Z0-9$-_@.&+!*(),]|%[0-9a-fA-F]{2})+`)
)

// cleanText strips markup, decodes entities and collapses whitespace.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// qualitySignals is computed from the raw feed description. Links are counted
// before markup is stripped so href targets are included.
func qualitySignals(rawSummary string) map[string]float64 {
	summary := cleanText(rawSummary)
	return map[string]float64{
		SignalSummaryLength:   float64(len([]rune(summary))),
		SignalWordCount:       float64(len(strings.Fields(summary))),
		SignalPersonalPronoun: float64(len(pronounRe.FindAllString(strings.ToLower(summary), -1))),
		SignalExternalLinks:   float64(len(linkRe.FindAllString(rawSummary, -1))),
	}
}
