package ranker

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
)

const (
	// MaxResultDocumentCount caps every FindTopDocuments result.
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the relevance difference below which two documents
	// are ordered by rating instead.
	RelevanceEpsilon = 1e-6
)

// Document is one ranked search hit.
type Document struct {
	ID        int     `json:"document_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Predicate decides whether a document may be scored. It is called once per
// (query term, document) pair and must be free of side effects.
type Predicate func(id int, status document.Status, rating int) bool

// StatusIs matches documents with the given status.
func StatusIs(status document.Status) Predicate {
	return func(_ int, s document.Status, _ int) bool {
		return s == status
	}
}

// IDF is ln(totalDocs / docFreq).
func IDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Rank orders docs by descending relevance, breaking near-ties by descending
// rating, and truncates to limit. Equal documents keep their input order.
func Rank(docs []Document, limit int) []Document {
	slices.SortStableFunc(docs, compare)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

func compare(a, b Document) int {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
		return cmp.Compare(b.Rating, a.Rating)
	}
	return cmp.Compare(b.Relevance, a.Relevance)
}
