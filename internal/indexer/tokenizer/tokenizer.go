// Package tokenizer splits raw text into whitespace-delimited words. Words are
// kept verbatim: no case folding, no stemming, no punctuation stripping.
package tokenizer

import (
	"iter"
	"slices"
)

const delimiter = ' '

// SplitIntoWords lazily yields the maximal runs of non-space bytes in text.
// The sequence holds no state between iterations and can be ranged over any
// number of times.
func SplitIntoWords(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i < len(text); i++ {
			if text[i] != delimiter {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(text[start:i]) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}

// Words collects SplitIntoWords into a slice.
func Words(text string) []string {
	return slices.Collect(SplitIntoWords(text))
}

// IsValidWord reports whether s is free of control characters (bytes below
// the space code).
func IsValidWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < delimiter {
			return false
		}
	}
	return true
}
