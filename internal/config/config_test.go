package config

import (
	"os"
	"testing"
	"time"
)

var spyglassVars = []string{
	"SPYGLASS_PROVIDER", "SPYGLASS_ENDPOINT", "SPYGLASS_API_KEY",
	"SPYGLASS_RATE_LIMIT", "SPYGLASS_RATE_BURST",
	"SPYGLASS_CHUNKED_BYTES", "SPYGLASS_CHUNKED_LINES",
	"SPYGLASS_FULL_LOAD_BYTES", "SPYGLASS_FULL_LOAD_LINES",
	"SPYGLASS_DEFAULT_LINES", "SPYGLASS_PROBE_LINES",
	"SPYGLASS_FETCH_WINDOW", "SPYGLASS_BUFFER", "SPYGLASS_SCROLL_DEBOUNCE",
	"SPYGLASS_BATCH_SIZE", "SPYGLASS_BATCH_INTERVAL",
	"SPYGLASS_OPT_BATCH_SIZE", "SPYGLASS_OPT_BATCH_INTERVAL",
	"SPYGLASS_OPTIMIZE_LIMIT", "SPYGLASS_MAX_RESULTS", "SPYGLASS_DEFAULT_LIMIT",
	"SPYGLASS_CACHE_CAPACITY", "SPYGLASS_CACHE_TTL", "SPYGLASS_SUGGEST_DEBOUNCE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range spyglassVars {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Source.Provider != "http" {
		t.Fatalf("expected default provider 'http', got %q", cfg.Source.Provider)
	}
	if cfg.Viewer.ChunkedBytes != 5*1024*1024 {
		t.Fatalf("expected 5MiB chunked threshold, got %d", cfg.Viewer.ChunkedBytes)
	}
	if cfg.Viewer.ChunkedLines != 10_000 {
		t.Fatalf("expected 10000 chunked line threshold, got %d", cfg.Viewer.ChunkedLines)
	}
	if cfg.Viewer.DefaultLines != 100_000 {
		t.Fatalf("expected default line placeholder 100000, got %d", cfg.Viewer.DefaultLines)
	}
	if cfg.Search.BatchSize != 50 || cfg.Search.OptimizedBatchSize != 200 {
		t.Fatalf("unexpected batch sizes: %d / %d", cfg.Search.BatchSize, cfg.Search.OptimizedBatchSize)
	}
	if cfg.Search.BatchInterval != 100*time.Millisecond || cfg.Search.OptimizedInterval != 50*time.Millisecond {
		t.Fatalf("unexpected batch intervals: %v / %v", cfg.Search.BatchInterval, cfg.Search.OptimizedInterval)
	}
	if cfg.Search.CacheCapacity != 10 || cfg.Search.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache settings: %d / %v", cfg.Search.CacheCapacity, cfg.Search.CacheTTL)
	}
	if cfg.Search.MaxResults != 5_000 {
		t.Fatalf("expected result cap 5000, got %d", cfg.Search.MaxResults)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPYGLASS_ENDPOINT", "https://logs.example.com")
	t.Setenv("SPYGLASS_BATCH_SIZE", "75")
	t.Setenv("SPYGLASS_CACHE_TTL", "90s")
	t.Setenv("SPYGLASS_RATE_LIMIT", "2.5")

	cfg := Load()

	if cfg.Source.Endpoint != "https://logs.example.com" {
		t.Fatalf("unexpected endpoint: %q", cfg.Source.Endpoint)
	}
	if cfg.Search.BatchSize != 75 {
		t.Fatalf("expected batch size 75, got %d", cfg.Search.BatchSize)
	}
	if cfg.Search.CacheTTL != 90*time.Second {
		t.Fatalf("expected 90s TTL, got %v", cfg.Search.CacheTTL)
	}
	if cfg.Source.RateLimit != 2.5 {
		t.Fatalf("expected rate 2.5, got %v", cfg.Source.RateLimit)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPYGLASS_BATCH_SIZE", "not-a-number")
	t.Setenv("SPYGLASS_SCROLL_DEBOUNCE", "soon")

	cfg := Load()

	if cfg.Search.BatchSize != 50 {
		t.Fatalf("expected fallback batch size 50, got %d", cfg.Search.BatchSize)
	}
	if cfg.Viewer.ScrollDebounce != 50*time.Millisecond {
		t.Fatalf("expected fallback debounce 50ms, got %v", cfg.Viewer.ScrollDebounce)
	}
}
