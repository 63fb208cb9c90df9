package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

// minFuzzyTokenLen is the shortest query token that is expanded by substring
// matching against the vocabulary.
const minFuzzyTokenLen = 3

// Index maps a word token to the ascending positions of the articles whose
// title or summary contain it.
type Index struct {
	postings map[string][]int
	vocab    []string
}

// BuildIndex tokenizes title and summary of every article in the corpus.
func BuildIndex(corpus []article.Article) *Index {
	idx := &Index{postings: make(map[string][]int)}
	for i, a := range corpus {
		for _, w := range words(a.Title + " " + a.Summary) {
			list := idx.postings[w]
			// positions are appended in corpus order, so a repeat is always last
			if n := len(list); n > 0 && list[n-1] == i {
				continue
			}
			idx.postings[w] = append(list, i)
		}
	}

	idx.vocab = make([]string, 0, len(idx.postings))
	for w := range idx.postings {
		idx.vocab = append(idx.vocab, w)
	}
	sort.Strings(idx.vocab)
	return idx
}

// Len returns the number of distinct tokens.
func (idx *Index) Len() int {
	return len(idx.vocab)
}

// Positions returns the posting list for token. The slice must not be modified.
func (idx *Index) Positions(token string) []int {
	return idx.postings[token]
}

// Candidates returns the unique positions, ascending, of articles admitted for
// scoring against query. Query tokens of at least three characters also pull
// in every indexed token that contains them or that they contain.
func (idx *Index) Candidates(query string) []int {
	if query == "" {
		return []int{}
	}

	seen := make(map[int]struct{})
	add := func(list []int) {
		for _, p := range list {
			seen[p] = struct{}{}
		}
	}

	for token := range Tokenize(query) {
		add(idx.postings[token])

		if utf8.RuneCountInString(token) < minFuzzyTokenLen {
			continue
		}
		for _, w := range idx.vocab {
			if w == token {
				continue
			}
			if strings.Contains(w, token) || strings.Contains(token, w) {
				add(idx.postings[w])
			}
		}
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
