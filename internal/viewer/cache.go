package viewer

import (
	"sync"

	"github.com/crimson-sun/spyglass/internal/model"
)

// Filter narrows which lines a chunk fetch returns. Two chunks with
// different filters are never equivalent, even for identical ranges, so the
// cache is cleared in full whenever the filter changes.
type Filter struct {
	Search   string
	Severity model.Severity
}

type lineRange struct {
	start, end int
}

// LineRangeCache holds fetched log lines keyed by absolute index, plus the
// registry of ranges already loaded under the active file and filter. Lines
// are immutable once cached and never evicted for the lifetime of the
// selection; selecting another file or filter resets everything.
type LineRangeCache struct {
	mu     sync.RWMutex
	file   string
	filter Filter
	lines  map[int]model.LogLine
	loaded map[lineRange]bool
}

// NewLineRangeCache creates an empty cache for the given selection.
func NewLineRangeCache(file string, filter Filter) *LineRangeCache {
	return &LineRangeCache{
		file:   file,
		filter: filter,
		lines:  make(map[int]model.LogLine),
		loaded: make(map[lineRange]bool),
	}
}

// Reset clears all cached lines and loaded ranges and adopts the new
// selection. Called whenever the file or filter changes.
func (c *LineRangeCache) Reset(file string, filter Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = file
	c.filter = filter
	c.lines = make(map[int]model.LogLine)
	c.loaded = make(map[lineRange]bool)
}

// Matches reports whether the cache currently serves the given selection.
func (c *LineRangeCache) Matches(file string, filter Filter) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file == file && c.filter == filter
}

// PutRange stores contents at [start, start+len(contents)) and marks the
// originally requested [start, end) window as loaded. The marked window may
// be wider than the returned lines when the fetch ran past end-of-file.
func (c *LineRangeCache) PutRange(start, end int, contents []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, content := range contents {
		idx := start + i
		if _, exists := c.lines[idx]; exists {
			continue // first write wins; lines are immutable
		}
		c.lines[idx] = model.LogLine{Index: idx, Content: content}
	}
	c.loaded[lineRange{start, end}] = true
}

// IsLoaded reports whether the exact [start, end) window was already fetched.
func (c *LineRangeCache) IsLoaded(start, end int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[lineRange{start, end}]
}

// Line returns the cached line at idx, if present.
func (c *LineRangeCache) Line(idx int) (model.LogLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	line, ok := c.lines[idx]
	return line, ok
}

// Lines returns whatever the cache holds in [start, end), in index order.
// Missing indices are omitted, not materialized: rendering never blocks on
// an incomplete fetch.
func (c *LineRangeCache) Lines(start, end int) []model.LogLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.LogLine, 0, end-start)
	for i := start; i < end; i++ {
		if line, ok := c.lines[i]; ok {
			out = append(out, line)
		}
	}
	return out
}

// Len returns the number of cached lines.
func (c *LineRangeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}
