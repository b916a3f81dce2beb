package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// ErrChunkUnavailable is returned when every fetch strategy failed. The
// caller surfaces an advisory; nothing panics past this boundary.
var ErrChunkUnavailable = errors.New("viewer: chunk unavailable from all sources")

// ChunkLoader fetches bounded line ranges through an ordered strategy chain:
// the dedicated range endpoint first, then the generic paged endpoint.
// Successful fetches populate the LineRangeCache and the loaded-ranges
// registry so the same window is never fetched twice.
type ChunkLoader struct {
	src   source.Source
	cache *LineRangeCache
	file  string

	mu       sync.Mutex
	inflight map[lineRange]bool
}

// NewChunkLoader creates a loader writing into the given cache.
func NewChunkLoader(src source.Source, cache *LineRangeCache, file string) *ChunkLoader {
	return &ChunkLoader{
		src:      src,
		cache:    cache,
		file:     file,
		inflight: make(map[lineRange]bool),
	}
}

type strategy struct {
	name    string
	attempt func(ctx context.Context) ([]string, error)
}

// Load fetches [start, start+limit) under the given filter. Windows already
// loaded are served from cache with zero fetches; windows already in flight
// return whatever the cache currently holds, since the virtualizer
// re-renders when the pending fetch lands.
func (l *ChunkLoader) Load(ctx context.Context, start, limit int, filter Filter) ([]model.LogLine, error) {
	end := start + limit
	if l.cache.IsLoaded(start, end) {
		return l.cache.Lines(start, end), nil
	}

	l.mu.Lock()
	key := lineRange{start, end}
	if l.inflight[key] {
		l.mu.Unlock()
		return l.cache.Lines(start, end), nil
	}
	l.inflight[key] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.inflight, key)
		l.mu.Unlock()
	}()

	strategies := []strategy{
		{
			name: "range",
			attempt: func(ctx context.Context) ([]string, error) {
				return l.src.ChunkRange(ctx, l.file, source.ChunkRequest{
					Start:    start,
					Limit:    limit,
					Search:   filter.Search,
					Severity: filter.Severity,
				})
			},
		},
		{
			name: "paged",
			attempt: func(ctx context.Context) ([]string, error) {
				return l.src.Paged(ctx, l.file, start, limit)
			},
		},
	}

	for _, s := range strategies {
		lines, err := s.attempt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("chunk fetch strategy failed",
				"strategy", s.name, "file", l.file, "start", start, "limit", limit, "error", err)
			continue
		}
		l.cache.PutRange(start, end, lines)
		return l.cache.Lines(start, end), nil
	}

	return nil, ErrChunkUnavailable
}
