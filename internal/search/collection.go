package search

import (
	"sync"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/model"
)

// Collection is the displayed result set for one search operation. It
// bounds its retained size under sustained high-volume streaming — a
// backpressure policy, not a correctness guarantee — while the true total
// is tracked separately and stays exact.
type Collection struct {
	cap int
	b   *bus.Bus
	op  string

	mu        sync.Mutex
	results   []model.SearchResult
	total     int
	truncated bool
}

// NewCollection creates a collection retaining at most cap results.
func NewCollection(cap int, b *bus.Bus, op string) *Collection {
	if cap <= 0 {
		cap = 5_000
	}
	return &Collection{cap: cap, b: b, op: op}
}

// Append ingests one flushed batch. Results past the cap are counted but
// not retained; the first overflow publishes a truncation notice.
func (c *Collection) Append(batch []model.SearchResult) {
	c.mu.Lock()
	c.total += len(batch)
	room := c.cap - len(c.results)
	if room > len(batch) {
		room = len(batch)
	}
	if room > 0 {
		c.results = append(c.results, batch[:room]...)
	}
	notify := false
	if room < len(batch) && !c.truncated {
		c.truncated = true
		notify = true
	}
	total := c.total
	c.mu.Unlock()

	if c.b != nil {
		c.b.Publish(bus.Event{Type: bus.EventBatch, Op: c.op, Batch: batch, Total: total})
		if notify {
			c.b.Publish(bus.Event{
				Type:     bus.EventTruncated,
				Op:       c.op,
				Total:    total,
				Advisory: "result list truncated; counts remain exact",
			})
		}
	}
}

// Restore replays a memoized result set, preserving the original true
// total even when the retained list was truncated.
func (c *Collection) Restore(results []model.SearchResult, total int, truncated bool) {
	c.mu.Lock()
	c.results = append([]model.SearchResult(nil), results...)
	c.total = total
	c.truncated = truncated
	c.mu.Unlock()

	if c.b != nil {
		c.b.Publish(bus.Event{Type: bus.EventBatch, Op: c.op, Batch: results, Total: total})
	}
}

// Results returns a copy of the retained results.
func (c *Collection) Results() []model.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.SearchResult, len(c.results))
	copy(out, c.results)
	return out
}

// Total returns the true number of results found, including any past the
// retention cap.
func (c *Collection) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Truncated reports whether the cap was hit.
func (c *Collection) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
