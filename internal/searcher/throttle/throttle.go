// Package throttle records the outcome of the most recent search requests in
// a fixed-size sliding window and tracks how many of them found nothing.
package throttle

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DefaultWindow is one request per minute over a day.
const DefaultWindow = 1440

// Finder runs searches on behalf of the queue.
type Finder interface {
	FindTopDocumentsByStatus(query string, status document.Status) ([]ranker.Document, error)
	FindTopDocumentsFunc(query string, predicate ranker.Predicate) ([]ranker.Document, error)
}

// RequestQueue is safe for concurrent use.
type RequestQueue struct {
	mu        sync.Mutex
	finder    Finder
	empty     []bool
	head      int
	size      int
	noResults int
	metrics   *metrics.Metrics
}

type Option func(*RequestQueue)

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *RequestQueue) {
		q.metrics = m
	}
}

// New creates a queue remembering the last window requests. A non-positive
// window selects DefaultWindow.
func New(finder Finder, window int, opts ...Option) *RequestQueue {
	if window <= 0 {
		window = DefaultWindow
	}
	q := &RequestQueue{
		finder: finder,
		empty:  make([]bool, window),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.metrics == nil {
		q.metrics = metrics.Discard()
	}
	return q
}

// AddFindRequest searches ACTUAL documents and records the outcome.
func (q *RequestQueue) AddFindRequest(query string) ([]ranker.Document, error) {
	return q.AddFindRequestByStatus(query, document.StatusActual)
}

func (q *RequestQueue) AddFindRequestByStatus(query string, status document.Status) ([]ranker.Document, error) {
	docs, err := q.finder.FindTopDocumentsByStatus(query, status)
	if err != nil {
		return nil, err
	}
	q.record(len(docs) == 0)
	return docs, nil
}

func (q *RequestQueue) AddFindRequestFunc(query string, predicate ranker.Predicate) ([]ranker.Document, error) {
	docs, err := q.finder.FindTopDocumentsFunc(query, predicate)
	if err != nil {
		return nil, err
	}
	q.record(len(docs) == 0)
	return docs, nil
}

// NoResultRequests is the number of requests in the window that returned no
// documents.
func (q *RequestQueue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResults
}

// record appends an outcome, evicting the oldest one once the window is full.
func (q *RequestQueue) record(empty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	capacity := len(q.empty)
	if q.size == capacity {
		if q.empty[q.head] {
			q.noResults--
		}
		q.head = (q.head + 1) % capacity
		q.size--
	}
	q.empty[(q.head+q.size)%capacity] = empty
	q.size++
	if empty {
		q.noResults++
	}
	q.metrics.NoResultRequests.Set(float64(q.noResults))
}
