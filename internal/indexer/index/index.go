// Package index holds the dual representation of the corpus: the inverted
// index (term -> document -> TF) and its transpose, the forward index
// (document -> term -> TF), together with per-document metadata and the
// ordered set of live ids.
//
// Index performs no locking and no input validation; the indexer.Engine
// serializes access and validates before calling in.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
)

// frequencyTolerance bounds the rounding error allowed when a document's
// term frequencies are summed back to 1.
const frequencyTolerance = 1e-9

var emptyFrequencies = Frequencies{}

type Index struct {
	inverted map[string]Postings
	forward  map[int]Frequencies
	docs     map[int]document.Meta
	ids      *roaring64.Bitmap
}

func New() *Index {
	return &Index{
		inverted: make(map[string]Postings),
		forward:  make(map[int]Frequencies),
		docs:     make(map[int]document.Meta),
		ids:      roaring64.New(),
	}
}

// Insert folds words (already stop-word filtered) into both indexes. Each
// occurrence contributes 1/len(words) to the word's frequency.
func (x *Index) Insert(id int, words []string, meta document.Meta) {
	freqs := make(Frequencies, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, w := range words {
			freqs[w] += inv
		}
	}
	for term, tf := range freqs {
		bucket, ok := x.inverted[term]
		if !ok {
			bucket = make(Postings)
			x.inverted[term] = bucket
		}
		bucket[id] = tf
	}
	x.forward[id] = freqs
	x.docs[id] = meta
	x.ids.Add(uint64(id))
}

// Delete purges id from every structure and reports whether it was present.
// The per-term bucket updates are scheduled by p; the term map itself is only
// mutated after they have all completed.
func (x *Index) Delete(id int, p execution.Policy) bool {
	freqs, ok := x.forward[id]
	if !ok {
		return false
	}
	terms := make([]string, 0, len(freqs))
	buckets := make([]Postings, 0, len(freqs))
	for term := range freqs {
		if bucket, ok := x.inverted[term]; ok {
			terms = append(terms, term)
			buckets = append(buckets, bucket)
		}
	}
	execution.ForEach(p, len(buckets), func(i int) {
		delete(buckets[i], id)
	})
	for i, term := range terms {
		if len(buckets[i]) == 0 {
			delete(x.inverted, term)
		}
	}
	delete(x.forward, id)
	delete(x.docs, id)
	x.ids.Remove(uint64(id))
	return true
}

func (x *Index) Contains(id int) bool {
	_, ok := x.docs[id]
	return ok
}

func (x *Index) Meta(id int) (document.Meta, bool) {
	meta, ok := x.docs[id]
	return meta, ok
}

// Postings returns the bucket for term, or nil. The map is owned by the index
// and must not be modified.
func (x *Index) Postings(term string) Postings {
	return x.inverted[term]
}

// Frequencies returns the forward entry for id, or an empty map. The map is
// owned by the index and must not be modified.
func (x *Index) Frequencies(id int) Frequencies {
	if freqs, ok := x.forward[id]; ok {
		return freqs
	}
	return emptyFrequencies
}

// Len is the number of live documents.
func (x *Index) Len() int {
	return len(x.docs)
}

// TermCount is the number of distinct terms in the inverted index.
func (x *Index) TermCount() int {
	return len(x.inverted)
}

// IDs returns the live ids in ascending order.
func (x *Index) IDs() []int {
	out := make([]int, 0, x.ids.GetCardinality())
	it := x.ids.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Snapshot returns the inverted index sorted by term.
func (x *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(x.inverted))
	for term, bucket := range x.inverted {
		copied := make(Postings, len(bucket))
		for id, tf := range bucket {
			copied[id] = tf
		}
		entries = append(entries, TermEntry{Term: term, Postings: copied})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Check verifies that the inverted and forward indexes are transposes of each
// other, that no bucket is empty, that metadata and the id set agree, and
// that every non-empty document's frequencies sum to 1.
func (x *Index) Check() error {
	if uint64(len(x.docs)) != x.ids.GetCardinality() {
		return fmt.Errorf("id set has %d members, metadata has %d", x.ids.GetCardinality(), len(x.docs))
	}
	if len(x.forward) != len(x.docs) {
		return fmt.Errorf("forward index has %d documents, metadata has %d", len(x.forward), len(x.docs))
	}
	for term, bucket := range x.inverted {
		if len(bucket) == 0 {
			return fmt.Errorf("term %q has an empty bucket", term)
		}
		for id, tf := range bucket {
			fwd, ok := x.forward[id]
			if !ok {
				return fmt.Errorf("term %q references unknown document %d", term, id)
			}
			if got, ok := fwd[term]; !ok || got != tf {
				return fmt.Errorf("term %q document %d: inverted tf %v, forward tf %v", term, id, tf, got)
			}
		}
	}
	for id, freqs := range x.forward {
		if !x.ids.Contains(uint64(id)) {
			return fmt.Errorf("document %d missing from id set", id)
		}
		if _, ok := x.docs[id]; !ok {
			return fmt.Errorf("document %d has no metadata", id)
		}
		sum := 0.0
		for term, tf := range freqs {
			if _, ok := x.inverted[term][id]; !ok {
				return fmt.Errorf("document %d term %q missing from inverted index", id, term)
			}
			sum += tf
		}
		if len(freqs) > 0 && math.Abs(sum-1) > frequencyTolerance {
			return fmt.Errorf("document %d frequencies sum to %v", id, sum)
		}
	}
	return nil
}
