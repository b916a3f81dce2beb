package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

func entry(n int) CacheEntry {
	return CacheEntry{
		Results: []model.SearchResult{{File: "a.log", LineNumber: n, Content: "x"}},
		Total:   1,
	}
}

func TestCachePutGet(t *testing.T) {
	c := NewResultCache(10, 5*time.Minute)
	c.Put("k1", entry(1))

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Total != 1 || len(got.Results) != 1 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if _, ok := c.Get("k2"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCacheEvictsInsertionOldest(t *testing.T) {
	c := NewResultCache(10, 5*time.Minute)
	for i := 1; i <= 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), entry(i))
	}

	// Reads must not promote: touch k1 before overflowing.
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("expected k1 resident")
	}

	c.Put("k11", entry(11))

	if _, ok := c.Get("k1"); ok {
		t.Fatal("expected first-inserted k1 evicted despite recent read")
	}
	for i := 2; i <= 11; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Fatalf("expected k%d resident", i)
		}
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewResultCache(10, 5*time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("k1", CacheEntry{Total: 1})

	now = now.Add(4 * time.Minute)
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("expected hit before TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k1"); ok {
		t.Fatal("expected expired entry treated as absent")
	}
	if c.Len() != 0 {
		t.Fatal("expected lazy removal on expired access")
	}
}

func TestCacheRePutKeepsInsertionPosition(t *testing.T) {
	c := NewResultCache(2, 5*time.Minute)
	c.Put("a", entry(1))
	c.Put("b", entry(2))
	c.Put("a", entry(3)) // refresh, not reinsertion
	c.Put("c", entry(4)) // overflow

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected 'a' evicted as insertion-oldest despite refresh")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected 'b' resident")
	}
}

func TestCacheKeyDistinguishesSemantics(t *testing.T) {
	base := source.SearchRequest{Query: "error", Limit: 100}
	variants := []source.SearchRequest{
		{Query: "error", Limit: 200},
		{Query: "error", Limit: 100, GitLabOnly: true},
		{Query: "error", Limit: 100, CrossNode: true},
		{Query: "error", Limit: 100, NodeID: "web-1"},
		{Query: "warning", Limit: 100},
		{Query: "error", Limit: 100, ContextLines: 3},
	}
	baseKey := CacheKey(base)
	seen := map[string]bool{baseKey: true}
	for _, v := range variants {
		k := CacheKey(v)
		if seen[k] {
			t.Fatalf("cache key collision for %+v", v)
		}
		seen[k] = true
	}

	// The optimized flag changes batching only, not result semantics.
	opt := base
	opt.Optimized = true
	if CacheKey(opt) != baseKey {
		t.Fatal("optimized flag must not change the cache key")
	}
}
