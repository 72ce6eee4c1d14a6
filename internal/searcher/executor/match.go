package executor

import (
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// MatchDocument explains which plus-terms of query occur in document id.
func (e *Executor) MatchDocument(query string, id int) ([]string, document.Status, error) {
	return e.MatchDocumentWith(execution.Sequential, query, id)
}

// MatchDocumentWith returns the sorted, unique plus-terms of query found in
// document id, together with its status. If the document contains any
// minus-term the list is empty. Under execution.Parallel the membership tests
// run concurrently; the result is identical to the sequential one.
func (e *Executor) MatchDocumentWith(p execution.Policy, query string, id int) ([]string, document.Status, error) {
	if id < 0 {
		return nil, 0, apperrors.Newf(apperrors.ErrInvalidInput, "negative document id %d", id)
	}
	start := time.Now()
	defer func() {
		e.metrics.SearchLatency.WithLabelValues("match").Observe(time.Since(start).Seconds())
	}()

	var (
		matched []string
		status  document.Status
		err     error
	)
	e.engine.Read(func(idx *index.Index) {
		meta, ok := idx.Meta(id)
		if !ok {
			err = apperrors.Newf(apperrors.ErrDocumentNotFound, "id %d", id)
			return
		}
		status = meta.Status

		var q parser.Query
		q, err = parser.Parse(query, e.engine.StopWords(), true)
		if err != nil {
			return
		}
		freqs := idx.Frequencies(id)
		if slices.Contains(containedIn(p, q.MinusTerms, freqs), true) {
			matched = []string{}
			return
		}
		hits := containedIn(p, q.PlusTerms, freqs)
		matched = make([]string, 0, len(q.PlusTerms))
		for i, term := range q.PlusTerms {
			if hits[i] {
				matched = append(matched, term)
			}
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return matched, status, nil
}

// containedIn reports, per term, whether it occurs in freqs. PlusTerms and
// MinusTerms are already sorted and unique, so collecting hits in index order
// yields a sorted, unique result.
func containedIn(p execution.Policy, terms []string, freqs index.Frequencies) []bool {
	hits := make([]bool, len(terms))
	execution.ForEach(p, len(terms), func(i int) {
		_, hits[i] = freqs[terms[i]]
	})
	return hits
}
