// Package stopwords holds the immutable set of words excluded from both
// indexing and querying.
package stopwords

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Set is safe for concurrent reads. The zero value is an empty set.
type Set struct {
	words map[string]struct{}
}

// New builds a Set from words, ignoring empty strings. It fails with
// ErrInvalidInput if any word contains a control character.
func New(words []string) (Set, error) {
	set := Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w == "" {
			continue
		}
		if !tokenizer.IsValidWord(w) {
			return Set{}, apperrors.Newf(apperrors.ErrInvalidInput, "stop word %q contains a control character", w)
		}
		set.words[w] = struct{}{}
	}
	return set, nil
}

// FromText builds a Set from a space-separated list of words.
func FromText(text string) (Set, error) {
	return New(tokenizer.Words(text))
}

func (s Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s Set) Len() int {
	return len(s.words)
}

// Words returns the stop words in ascending order.
func (s Set) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
