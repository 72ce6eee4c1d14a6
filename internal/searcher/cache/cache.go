// Package cache memoizes status-filtered search results in an external
// key-value store. Keys embed the engine generation, so any document addition
// or removal makes earlier entries unreachable without an explicit flush.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
)

const (
	defaultTTL       = 60 * time.Second
	defaultOpTimeout = 500 * time.Millisecond
)

// Store is satisfied by *pkgredis.Client. Get returns pkgredis.ErrCacheMiss
// for absent keys; Purge drops every entry the store owns.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Purge(ctx context.Context) (int64, error)
}

// Searcher is the uncached search path.
type Searcher interface {
	FindTopDocumentsByStatus(query string, status document.Status) ([]ranker.Document, error)
	FindTopDocumentsFunc(query string, predicate ranker.Predicate) ([]ranker.Document, error)
}

// Versioned reports the current index generation.
type Versioned interface {
	Generation() uint64
}

type QueryCache struct {
	store     Store
	searcher  Searcher
	versioned Versioned
	ttl       time.Duration
	timeout   time.Duration
	group     singleflight.Group
	logger    *slog.Logger
	metrics   *metrics.Metrics
	hits      atomic.Int64
	misses    atomic.Int64
}

type Option func(*QueryCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *QueryCache) {
		c.ttl = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *QueryCache) {
		c.metrics = m
	}
}

func New(store Store, searcher Searcher, versioned Versioned, opts ...Option) *QueryCache {
	c := &QueryCache{
		store:     store,
		searcher:  searcher,
		versioned: versioned,
		ttl:       defaultTTL,
		timeout:   defaultOpTimeout,
		logger:    slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.Discard()
	}
	return c
}

// FindTopDocumentsByStatus serves from the store when possible. Store
// failures degrade to an uncached search.
func (c *QueryCache) FindTopDocumentsByStatus(query string, status document.Status) ([]ranker.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	key := c.buildKey(query, status)
	if docs, ok := c.get(ctx, key); ok {
		return docs, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		docs, err := c.searcher.FindTopDocumentsByStatus(query, status)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(val.([]ranker.Document)), nil
}

// FindTopDocumentsFunc bypasses the cache: arbitrary predicates have no key.
func (c *QueryCache) FindTopDocumentsFunc(query string, predicate ranker.Predicate) ([]ranker.Document, error) {
	return c.searcher.FindTopDocumentsFunc(query, predicate)
}

// Invalidate deletes every cached entry.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.Purge(ctx)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) ([]ranker.Document, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.ErrCacheMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var docs []ranker.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheHitsTotal.Inc()
	return docs, true
}

func (c *QueryCache) set(ctx context.Context, key string, docs []ranker.Document) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	c.metrics.CacheMissesTotal.Inc()
}

func (c *QueryCache) buildKey(query string, status document.Status) string {
	raw := fmt.Sprintf("%d|%s|status=%s", c.versioned.Generation(), normalizeQuery(query), status)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", hash[:16])
}

// normalizeQuery sorts and deduplicates the words of query. Plus- and
// minus-term sets are order-independent, so equivalent queries share a key.
func normalizeQuery(query string) string {
	words := tokenizer.Words(query)
	slices.Sort(words)
	return strings.Join(slices.Compact(words), " ")
}
