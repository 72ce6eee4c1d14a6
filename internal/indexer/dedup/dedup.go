// Package dedup finds documents whose set of indexed terms repeats that of an
// earlier document and removes them.
package dedup

import (
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Index is the subset of indexer.Engine the detector needs.
type Index interface {
	IDs() iter.Seq[int]
	WordFrequencies(id int) map[string]float64
	RemoveDocument(id int)
}

// termSetSeparator cannot occur inside a term: terms never contain control
// characters.
const termSetSeparator = "\x00"

// RemoveDuplicates scans documents in ascending id order and removes every
// document whose term set (frequencies ignored) equals that of a document
// with a lower id. Removal happens after the scan. It returns the removed ids
// in ascending order.
func RemoveDuplicates(idx Index) []int {
	logger := slog.Default().With("component", "dedup")
	seen := make(map[string]struct{})
	var duplicates []int
	for id := range idx.IDs() {
		key := termSetKey(idx.WordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	for _, id := range duplicates {
		logger.Info("found duplicate document", "doc_id", id)
		idx.RemoveDocument(id)
	}
	return duplicates
}

func termSetKey(freqs map[string]float64) string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return strings.Join(terms, termSetSeparator)
}
