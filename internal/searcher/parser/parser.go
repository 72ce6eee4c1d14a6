// Package parser turns a raw query into plus-terms (must match) and
// minus-terms (must not match).
package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

const minusPrefix = "-"

// Query never contains empty terms or stop words.
type Query struct {
	PlusTerms  []string
	MinusTerms []string
	RawQuery   string
}

// Parse validates and classifies every word of text. A leading "-" marks a
// minus-term; a bare "-" or a doubled "--" prefix is rejected. Stop words are
// dropped after classification. With dedupe, both term lists are sorted and
// deduplicated.
func Parse(text string, stop stopwords.Set, dedupe bool) (Query, error) {
	q := Query{RawQuery: text}
	if !tokenizer.IsValidWord(text) {
		return Query{}, apperrors.New(apperrors.ErrInvalidInput, "query contains a control character")
	}
	for word := range tokenizer.SplitIntoWords(text) {
		term, minus, err := parseWord(word)
		if err != nil {
			return Query{}, err
		}
		if stop.Contains(term) {
			continue
		}
		if minus {
			q.MinusTerms = append(q.MinusTerms, term)
		} else {
			q.PlusTerms = append(q.PlusTerms, term)
		}
	}
	if dedupe {
		q.PlusTerms = sortUnique(q.PlusTerms)
		q.MinusTerms = sortUnique(q.MinusTerms)
	}
	return q, nil
}

func parseWord(word string) (term string, minus bool, err error) {
	term, minus = strings.CutPrefix(word, minusPrefix)
	if term == "" {
		return "", false, apperrors.Newf(apperrors.ErrInvalidInput, "query word %q has no term after the minus sign", word)
	}
	if strings.HasPrefix(term, minusPrefix) {
		return "", false, apperrors.Newf(apperrors.ErrInvalidInput, "query word %q has a doubled minus sign", word)
	}
	return term, minus, nil
}

func sortUnique(terms []string) []string {
	slices.Sort(terms)
	return slices.Compact(terms)
}
