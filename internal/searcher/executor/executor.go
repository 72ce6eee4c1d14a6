package executor

import (
	"log/slog"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

type Executor struct {
	engine  *indexer.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Executor)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

func New(engine *indexer.Engine, opts ...Option) *Executor {
	e := &Executor{
		engine: engine,
		logger: slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.Discard()
	}
	return e
}

// FindTopDocuments returns the best matches among ACTUAL documents.
func (e *Executor) FindTopDocuments(query string) ([]ranker.Document, error) {
	return e.FindTopDocumentsByStatus(query, document.StatusActual)
}

func (e *Executor) FindTopDocumentsByStatus(query string, status document.Status) ([]ranker.Document, error) {
	return e.FindTopDocumentsFunc(query, ranker.StatusIs(status))
}

// FindTopDocumentsFunc scores documents passing predicate by TF-IDF over the
// query's plus-terms, drops every document containing a minus-term, and
// returns at most ranker.MaxResultDocumentCount hits.
func (e *Executor) FindTopDocumentsFunc(query string, predicate ranker.Predicate) ([]ranker.Document, error) {
	start := time.Now()
	var (
		matched []ranker.Document
		err     error
	)
	e.engine.Read(func(idx *index.Index) {
		var q parser.Query
		q, err = parser.Parse(query, e.engine.StopWords(), true)
		if err != nil {
			return
		}
		matched = findAllDocuments(idx, q, predicate)
	})
	e.metrics.SearchLatency.WithLabelValues("find").Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		e.logger.Debug("query rejected", "query", query, "error", err)
		return nil, err
	}

	candidates := len(matched)
	results := ranker.Rank(matched, ranker.MaxResultDocumentCount)
	resultType := "hit"
	if len(results) == 0 {
		resultType = "zero_result"
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.SearchResultsCount.Observe(float64(len(results)))
	e.logger.Debug("query executed",
		"query", query,
		"candidates", candidates,
		"results", len(results),
		"latency", time.Since(start),
	)
	return results, nil
}

// findAllDocuments returns unranked hits in ascending id order.
func findAllDocuments(idx *index.Index, q parser.Query, predicate ranker.Predicate) []ranker.Document {
	relevance := make(map[int]float64)
	total := idx.Len()
	for _, term := range q.PlusTerms {
		postings := idx.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := ranker.IDF(total, len(postings))
		for id, tf := range postings {
			meta, _ := idx.Meta(id)
			if predicate(id, meta.Status, meta.Rating) {
				relevance[id] += tf * idf
			}
		}
	}

	excluded := roaring64.New()
	for _, term := range q.MinusTerms {
		for id := range idx.Postings(term) {
			excluded.Add(uint64(id))
		}
	}

	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		if !excluded.Contains(uint64(id)) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	docs := make([]ranker.Document, 0, len(ids))
	for _, id := range ids {
		meta, _ := idx.Meta(id)
		docs = append(docs, ranker.Document{
			ID:        id,
			Relevance: relevance[id],
			Rating:    meta.Rating,
		})
	}
	return docs
}
