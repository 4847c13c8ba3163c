// Package keywords scores word importance in a text with the RAKE degree metric.
package keywords

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"NewsSpider/internal/ports"
)

var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]+`)

// Rake splits text into candidate phrases at stopwords and punctuation and scores each
// word by its degree in the phrase co-occurrence graph.
type Rake struct {
	stopwords map[string]struct{}
}

var _ ports.KeywordScorer = (*Rake)(nil)

// Option tweaks a Rake scorer.
type Option func(*Rake)

// WithStopwords replaces the default English stopword list.
func WithStopwords(words []string) Option {
	return func(r *Rake) {
		r.stopwords = toSet(words)
	}
}

// NewRake builds a scorer with the English stopword list.
func NewRake(opts ...Option) *Rake {
	r := &Rake{stopwords: toSet(englishStopwords)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score returns the degree of every non-stopword word in text. A word occurring in a
// phrase of n words gains n, so a word seen only alone scores its frequency.
func (r *Rake) Score(text string) map[string]int {
	degree := map[string]int{}
	for _, phrase := range r.phrases(text) {
		for _, word := range phrase {
			degree[word] += len(phrase)
		}
	}
	return degree
}

func (r *Rake) phrases(text string) [][]string {
	var (
		phrases [][]string
		current []string
	)

	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, current)
			current = nil
		}
	}

	for _, token := range tokenExpr.FindAllString(strings.ToLower(text), -1) {
		if !isWord(token) {
			flush()
			continue
		}
		if _, stop := r.stopwords[token]; stop {
			flush()
			continue
		}
		current = append(current, token)
	}
	flush()

	return phrases
}

// isWord reports whether token is a word run rather than a punctuation run.
func isWord(token string) bool {
	r, _ := utf8.DecodeRuneInString(token)
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
