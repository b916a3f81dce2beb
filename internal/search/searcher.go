package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// Searcher runs streaming searches: cache lookup, previous-operation
// cancellation, NDJSON ingestion through the batcher, and memoization of
// completed result sets.
type Searcher struct {
	src   source.Source
	cfg   config.SearchConfig
	cache *ResultCache
	b     *bus.Bus

	mu         sync.Mutex
	cancelPrev context.CancelFunc
}

// NewSearcher creates a Searcher over the given source.
func NewSearcher(src source.Source, cfg config.SearchConfig, b *bus.Bus) *Searcher {
	return &Searcher{
		src:   src,
		cfg:   cfg,
		cache: NewResultCache(cfg.CacheCapacity, cfg.CacheTTL),
		b:     b,
	}
}

// Cache exposes the result cache, mainly for tests and stats.
func (s *Searcher) Cache() *ResultCache { return s.cache }

// Search runs one search to completion and returns its collection.
// Submitting a new search cancels any still-running previous one before the
// first byte is read. A cancelled search returns its partial collection
// with a nil error: cancellation is not a failure.
func (s *Searcher) Search(ctx context.Context, req source.SearchRequest) (*Collection, error) {
	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	// Large expected volume flips the stream into optimized batching.
	// Independent tunable from the viewer's chunked-mode threshold.
	if req.Limit >= s.cfg.OptimizeLimit {
		req.Optimized = true
	}

	op := uuid.NewString()
	key := CacheKey(req)

	// Every submission cancels the previous operation before anything
	// else, cache-served or not: a replay must not leave a stale stream
	// publishing into the bus. The deferred cancel releases this
	// operation's own context once it completes.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	s.cancelPrev = cancel
	s.mu.Unlock()

	if entry, ok := s.cache.Get(key); ok {
		slog.Debug("search served from cache", "op", op, "key", key)
		col := NewCollection(s.cfg.MaxResults, s.b, op)
		col.Restore(entry.Results, entry.Total, entry.Truncated)
		s.publishStatus(op, model.StatusOK, "")
		return col, nil
	}

	s.publishStatus(op, model.StatusLoading, "")

	body, err := s.src.StreamSearch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return NewCollection(s.cfg.MaxResults, s.b, op), nil
		}
		s.publishStatus(op, model.StatusError, "search endpoint unavailable")
		return nil, err
	}
	defer body.Close()

	col := NewCollection(s.cfg.MaxResults, s.b, op)
	batcher := NewStreamBatcher(s.batcherOptions(req.Optimized), col.Append)

	slog.Debug("search started", "op", op, "query", req.Query, "limit", req.Limit, "optimized", req.Optimized)
	if err := batcher.Consume(ctx, body); err != nil {
		if errors.Is(err, context.Canceled) {
			// Quietly stop accumulating; never a user-visible error.
			return col, nil
		}
		s.publishStatus(op, model.StatusError, "search stream interrupted")
		return col, err
	}

	s.cache.Put(key, CacheEntry{
		Results:   col.Results(),
		Total:     col.Total(),
		Truncated: col.Truncated(),
	})

	status := model.StatusOK
	if col.Total() == 0 {
		status = model.StatusEmpty
	}
	s.publishStatus(op, status, "")
	slog.Debug("search finished",
		"op", op, "total", col.Total(), "malformed", batcher.Malformed(), "dropped", batcher.Dropped())
	return col, nil
}

// CancelActive cancels any in-flight search.
func (s *Searcher) CancelActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPrev != nil {
		s.cancelPrev()
		s.cancelPrev = nil
	}
}

func (s *Searcher) batcherOptions(optimized bool) BatcherOptions {
	if optimized {
		return BatcherOptions{Size: s.cfg.OptimizedBatchSize, Interval: s.cfg.OptimizedInterval}
	}
	return BatcherOptions{Size: s.cfg.BatchSize, Interval: s.cfg.BatchInterval}
}

func (s *Searcher) publishStatus(op string, status model.Status, advisory string) {
	if s.b == nil {
		return
	}
	s.b.Publish(bus.Event{Type: bus.EventSearchStatus, Op: op, Status: status, Advisory: advisory})
}
