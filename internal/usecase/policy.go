package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"NewsSpider/internal/domain"
)

const (
	DefaultMaxAge           = 24 * time.Hour
	DefaultMinTextLength    = 512
	DefaultMinKeywordScore  = 3
	DefaultMinKeywordLength = 5
)

// Policy holds the filtering thresholds applied to every candidate article.
type Policy struct {
	// MaxAge rejects articles published longer ago than this.
	MaxAge time.Duration
	// MinTextLength rejects articles whose main text has fewer runes.
	MinTextLength int
	// MinKeywordScore keeps keywords scoring strictly above it.
	MinKeywordScore int
	// MinKeywordLength keeps keywords with at least this many runes.
	MinKeywordLength int
	// MaxTagsLength bounds the joined keyword tokens; zero means unbounded.
	MaxTagsLength int
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxAge:           DefaultMaxAge,
		MinTextLength:    DefaultMinTextLength,
		MinKeywordScore:  DefaultMinKeywordScore,
		MinKeywordLength: DefaultMinKeywordLength,
		MaxTagsLength:    domain.MaxTagsLength,
	}
}

// SelectKeywords returns "keyword_score" tokens for every qualifying keyword, highest
// score first and alphabetical among equal scores.
func (p Policy) SelectKeywords(scores map[string]int) []string {
	type scored struct {
		word  string
		score int
	}

	var kept []scored
	for word, score := range scores {
		if score > p.MinKeywordScore && utf8.RuneCountInString(word) >= p.MinKeywordLength {
			kept = append(kept, scored{word: word, score: score})
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].word < kept[j].word
	})

	tokens := make([]string, 0, len(kept))
	for _, k := range kept {
		tokens = append(tokens, fmt.Sprintf("%s_%d", k.word, k.score))
	}
	return tokens
}

// JoinTags joins tokens with commas and drops the tail that would not fit in
// MaxTagsLength runes. Tokens are never cut in half.
func (p Policy) JoinTags(tokens []string) string {
	var b strings.Builder
	length := 0
	for _, token := range tokens {
		n := utf8.RuneCountInString(token)
		if b.Len() > 0 {
			n++
		}
		if p.MaxTagsLength > 0 && length+n > p.MaxTagsLength {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(token)
		length += n
	}
	return b.String()
}
