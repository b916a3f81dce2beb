package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all Spyglass configuration.
type Config struct {
	Source SourceConfig
	Viewer ViewerConfig
	Search SearchConfig
}

// SourceConfig holds log-endpoint connection settings.
type SourceConfig struct {
	Provider  string
	Endpoint  string
	APIKey    string
	Timeout   time.Duration // per-request HTTP timeout; streams are exempt
	RateLimit float64       // chunk fetches per second
	RateBurst int
}

// ViewerConfig holds chunked-virtualization settings.
type ViewerConfig struct {
	ChunkedBytes   int64 // force chunked mode above this size
	ChunkedLines   int   // force chunked mode above this line count
	FullLoadBytes  int64 // full load allowed only below this size
	FullLoadLines  int   // full load allowed only below this line count
	DefaultLines   int   // line-count placeholder when nothing is known
	ProbeLines     int   // size of the single probe chunk
	FetchWindow    int   // lines per fetch window
	Buffer         int   // prefetch buffer, lines each side of the viewport
	ScrollDebounce time.Duration
}

// SearchConfig holds streaming-search settings.
type SearchConfig struct {
	BatchSize          int
	BatchInterval      time.Duration
	OptimizedBatchSize int
	OptimizedInterval  time.Duration
	OptimizeLimit      int // result limit at or above which optimized batching kicks in
	MaxResults         int // retained result cap
	DefaultLimit       int
	CacheCapacity      int
	CacheTTL           time.Duration
	SuggestDebounce    time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Source: SourceConfig{
			Provider:  getenv("SPYGLASS_PROVIDER", "http"),
			Endpoint:  os.Getenv("SPYGLASS_ENDPOINT"),
			APIKey:    os.Getenv("SPYGLASS_API_KEY"),
			Timeout:   getenvDuration("SPYGLASS_TIMEOUT", 30*time.Second),
			RateLimit: getenvFloat("SPYGLASS_RATE_LIMIT", 20),
			RateBurst: getenvInt("SPYGLASS_RATE_BURST", 5),
		},
		Viewer: ViewerConfig{
			ChunkedBytes:   getenvInt64("SPYGLASS_CHUNKED_BYTES", 5*1024*1024),
			ChunkedLines:   getenvInt("SPYGLASS_CHUNKED_LINES", 10_000),
			FullLoadBytes:  getenvInt64("SPYGLASS_FULL_LOAD_BYTES", 1*1024*1024),
			FullLoadLines:  getenvInt("SPYGLASS_FULL_LOAD_LINES", 5_000),
			DefaultLines:   getenvInt("SPYGLASS_DEFAULT_LINES", 100_000),
			ProbeLines:     getenvInt("SPYGLASS_PROBE_LINES", 100),
			FetchWindow:    getenvInt("SPYGLASS_FETCH_WINDOW", 100),
			Buffer:         getenvInt("SPYGLASS_BUFFER", 50),
			ScrollDebounce: getenvDuration("SPYGLASS_SCROLL_DEBOUNCE", 50*time.Millisecond),
		},
		Search: SearchConfig{
			BatchSize:          getenvInt("SPYGLASS_BATCH_SIZE", 50),
			BatchInterval:      getenvDuration("SPYGLASS_BATCH_INTERVAL", 100*time.Millisecond),
			OptimizedBatchSize: getenvInt("SPYGLASS_OPT_BATCH_SIZE", 200),
			OptimizedInterval:  getenvDuration("SPYGLASS_OPT_BATCH_INTERVAL", 50*time.Millisecond),
			OptimizeLimit:      getenvInt("SPYGLASS_OPTIMIZE_LIMIT", 1_000),
			MaxResults:         getenvInt("SPYGLASS_MAX_RESULTS", 5_000),
			DefaultLimit:       getenvInt("SPYGLASS_DEFAULT_LIMIT", 500),
			CacheCapacity:      getenvInt("SPYGLASS_CACHE_CAPACITY", 10),
			CacheTTL:           getenvDuration("SPYGLASS_CACHE_TTL", 5*time.Minute),
			SuggestDebounce:    getenvDuration("SPYGLASS_SUGGEST_DEBOUNCE", 200*time.Millisecond),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
