package search

import (
	"testing"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/model"
)

func makeBatch(start, n int) []model.SearchResult {
	out := make([]model.SearchResult, n)
	for i := range out {
		out[i] = model.SearchResult{File: "a.log", LineNumber: start + i, Content: "x"}
	}
	return out
}

func TestCollectionBoundedRetention(t *testing.T) {
	c := NewCollection(5_000, nil, "op")

	for i := 0; i < 60; i++ {
		c.Append(makeBatch(i*100+1, 100))
	}

	if got := len(c.Results()); got != 5_000 {
		t.Fatalf("expected retention capped at 5000, got %d", got)
	}
	if c.Total() != 6_000 {
		t.Fatalf("expected true total 6000, got %d", c.Total())
	}
	if !c.Truncated() {
		t.Fatal("expected truncation flag set")
	}
}

func TestCollectionUnderCap(t *testing.T) {
	c := NewCollection(5_000, nil, "op")
	c.Append(makeBatch(1, 10))

	if len(c.Results()) != 10 || c.Total() != 10 {
		t.Fatalf("unexpected counts: retained=%d total=%d", len(c.Results()), c.Total())
	}
	if c.Truncated() {
		t.Fatal("unexpected truncation under cap")
	}
}

func TestCollectionPublishesTruncationOnce(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe()
	c := NewCollection(10, b, "op")

	c.Append(makeBatch(1, 8))
	c.Append(makeBatch(9, 8))  // crosses the cap
	c.Append(makeBatch(17, 8)) // already truncated

	b.Close()
	var truncations int
	for ev := range sub {
		if ev.Type == bus.EventTruncated {
			truncations++
			if ev.Advisory == "" {
				t.Fatal("truncation notice needs an advisory")
			}
		}
	}
	if truncations != 1 {
		t.Fatalf("expected exactly 1 truncation notice, got %d", truncations)
	}
}

func TestCollectionResultsIsACopy(t *testing.T) {
	c := NewCollection(100, nil, "op")
	c.Append(makeBatch(1, 3))

	snapshot := c.Results()
	snapshot[0].Content = "mutated"

	if c.Results()[0].Content != "x" {
		t.Fatal("Results must return a defensive copy")
	}
}
