package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, pkgredis.ErrCacheMiss
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memoryStore) Purge(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.data))
	clear(s.data)
	return n, nil
}

type countingSearcher struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSearcher) FindTopDocumentsByStatus(query string, status document.Status) ([]ranker.Document, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if strings.HasPrefix(query, "--") {
		return nil, errors.New("bad query")
	}
	return []ranker.Document{{ID: int(status), Relevance: 0.5, Rating: len(query)}}, nil
}

func (s *countingSearcher) FindTopDocumentsFunc(query string, _ ranker.Predicate) ([]ranker.Document, error) {
	return s.FindTopDocumentsByStatus(query, document.StatusActual)
}

func (s *countingSearcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type generation struct {
	n uint64
}

func (g *generation) Generation() uint64 { return g.n }

func TestCacheHit(t *testing.T) {
	store := newMemoryStore()
	searcher := &countingSearcher{}
	m := metrics.New(prometheus.NewRegistry())
	c := New(store, searcher, &generation{}, WithTTL(time.Minute), WithMetrics(m))

	first, err := c.FindTopDocumentsByStatus("cat dog", document.StatusActual)
	require.NoError(t, err)
	second, err := c.FindTopDocumentsByStatus("cat dog", document.StatusActual)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, searcher.Calls())
	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	for _, ttl := range store.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCacheKeys(t *testing.T) {
	store := newMemoryStore()
	searcher := &countingSearcher{}
	gen := &generation{}
	c := New(store, searcher, gen)

	_, err := c.FindTopDocumentsByStatus("cat dog", document.StatusActual)
	require.NoError(t, err)
	_, err = c.FindTopDocumentsByStatus("dog  cat cat", document.StatusActual)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.Calls(), "equivalent queries share a key")

	_, err = c.FindTopDocumentsByStatus("cat dog", document.StatusBanned)
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.Calls(), "status is part of the key")

	_, err = c.FindTopDocumentsByStatus("cat -dog", document.StatusActual)
	require.NoError(t, err)
	assert.Equal(t, 3, searcher.Calls(), "minus terms are part of the key")

	gen.n++
	_, err = c.FindTopDocumentsByStatus("cat dog", document.StatusActual)
	require.NoError(t, err)
	assert.Equal(t, 4, searcher.Calls(), "a new generation misses")
}

func TestCacheStoreFailureDegrades(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	searcher := &countingSearcher{}
	c := New(store, searcher, &generation{})

	for i := 0; i < 2; i++ {
		docs, err := c.FindTopDocumentsByStatus("cat", document.StatusActual)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	}
	assert.Equal(t, 2, searcher.Calls())
}

func TestCacheErrorsAreNotStored(t *testing.T) {
	store := newMemoryStore()
	searcher := &countingSearcher{}
	c := New(store, searcher, &generation{})

	_, err := c.FindTopDocumentsByStatus("--cat", document.StatusActual)
	assert.Error(t, err)
	assert.Empty(t, store.data)
}

func TestCacheBypassesPredicates(t *testing.T) {
	store := newMemoryStore()
	searcher := &countingSearcher{}
	c := New(store, searcher, &generation{})

	for i := 0; i < 2; i++ {
		_, err := c.FindTopDocumentsFunc("cat", func(int, document.Status, int) bool { return true })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, searcher.Calls())
	assert.Empty(t, store.data)
}

func TestCacheReturnsPrivateCopies(t *testing.T) {
	c := New(newMemoryStore(), &countingSearcher{}, &generation{})

	first, err := c.FindTopDocumentsByStatus("cat", document.StatusActual)
	require.NoError(t, err)
	first[0].ID = 99

	second, err := c.FindTopDocumentsByStatus("cat", document.StatusActual)
	require.NoError(t, err)
	assert.Equal(t, 0, second[0].ID)
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	searcher := &countingSearcher{}
	c := New(store, searcher, &generation{})

	_, err := c.FindTopDocumentsByStatus("cat", document.StatusActual)
	require.NoError(t, err)
	require.NotEmpty(t, store.data)
	require.NoError(t, c.Invalidate(context.Background()))

	assert.Empty(t, store.data)
	_, err = c.FindTopDocumentsByStatus("cat", document.StatusActual)
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.Calls())
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "-b a c", normalizeQuery("c a  -b a"))
	assert.Equal(t, "", normalizeQuery("   "))
}
