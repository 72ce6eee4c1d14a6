package indexer

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Engine owns the dual index and keeps it consistent across document
// additions and removals. Mutations take the write lock; readers go through
// Read and share the read lock.
type Engine struct {
	mu         sync.RWMutex
	idx        *index.Index
	stopWords  stopwords.Set
	removal    execution.Policy
	generation atomic.Uint64
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRemovalPolicy sets the policy RemoveDocument uses. The default is
// execution.Sequential.
func WithRemovalPolicy(p execution.Policy) Option {
	return func(e *Engine) {
		e.removal = p
	}
}

func NewEngine(stopWords stopwords.Set, opts ...Option) *Engine {
	e := &Engine{
		idx:       index.New(),
		stopWords: stopWords,
		removal:   execution.Sequential,
		logger:    slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.Discard()
	}
	return e
}

// NewEngineFromText builds an Engine whose stop words are the space-separated
// words of text.
func NewEngineFromText(stopWordsText string, opts ...Option) (*Engine, error) {
	set, err := stopwords.FromText(stopWordsText)
	if err != nil {
		return nil, err
	}
	return NewEngine(set, opts...), nil
}

// AddDocument indexes text under id. It fails with ErrInvalidInput if the
// text is empty or contains a control character, if id is negative, or if id
// is already present; on failure the index is left untouched.
func (e *Engine) AddDocument(id int, text string, status document.Status, ratings []int) error {
	if text == "" {
		return apperrors.Newf(apperrors.ErrInvalidInput, "document %d is empty", id)
	}
	if id < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "negative document id %d", id)
	}
	words, err := e.splitIntoWordsNoStop(text)
	if err != nil {
		return err
	}
	meta := document.Meta{
		Rating: document.AverageRating(ratings),
		Status: status,
	}

	e.mu.Lock()
	if e.idx.Contains(id) {
		e.mu.Unlock()
		return apperrors.Newf(apperrors.ErrDocumentExists, "id %d", id)
	}
	e.idx.Insert(id, words, meta)
	e.generation.Add(1)
	docs, terms := e.idx.Len(), e.idx.TermCount()
	e.mu.Unlock()

	e.metrics.DocumentsAddedTotal.Inc()
	e.metrics.IndexedDocuments.Set(float64(docs))
	e.metrics.IndexedTerms.Set(float64(terms))
	e.logger.Debug("document indexed",
		"doc_id", id,
		"word_count", len(words),
		"status", status,
		"rating", meta.Rating,
	)
	return nil
}

// RemoveDocument removes id using the engine's configured removal policy.
// Unknown ids are ignored.
func (e *Engine) RemoveDocument(id int) {
	e.RemoveDocumentWith(e.removal, id)
}

// RemoveDocumentWith removes id, scheduling the per-term bucket updates with
// p. Both policies leave identical index state.
func (e *Engine) RemoveDocumentWith(p execution.Policy, id int) {
	e.mu.Lock()
	removed := e.idx.Delete(id, p)
	if removed {
		e.generation.Add(1)
	}
	docs, terms := e.idx.Len(), e.idx.TermCount()
	e.mu.Unlock()

	if !removed {
		return
	}
	e.metrics.DocumentsRemovedTotal.WithLabelValues(p.String()).Inc()
	e.metrics.IndexedDocuments.Set(float64(docs))
	e.metrics.IndexedTerms.Set(float64(terms))
	e.logger.Debug("document removed", "doc_id", id, "policy", p)
}

func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Len()
}

// IDs yields the live document ids in ascending order, as of the call.
func (e *Engine) IDs() iter.Seq[int] {
	e.mu.RLock()
	ids := e.idx.IDs()
	e.mu.RUnlock()
	return slices.Values(ids)
}

// WordFrequencies returns a copy of the term frequencies of id, or an empty
// map if id is unknown.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(map[string]float64(e.idx.Frequencies(id)))
}

func (e *Engine) StopWords() stopwords.Set {
	return e.stopWords
}

// Generation changes after every successful mutation.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

// Read runs fn with shared access to the index. fn must not retain the index
// or any map obtained from it past its return.
func (e *Engine) Read(fn func(idx *index.Index)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.idx)
}

func (e *Engine) splitIntoWordsNoStop(text string) ([]string, error) {
	var words []string
	for word := range tokenizer.SplitIntoWords(text) {
		if !tokenizer.IsValidWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "word %q contains a control character", word)
		}
		if !e.stopWords.Contains(word) {
			words = append(words, word)
		}
	}
	return words, nil
}
