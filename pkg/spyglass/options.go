package spyglass

import "time"

type options struct {
	provider   string
	baseURL    string
	token      string
	timeout    time.Duration
	maxResults int
	cacheSize  int
	cacheTTL   time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithProvider selects the source backend. Default: "http".
func WithProvider(name string) Option {
	return func(o *options) {
		o.provider = name
	}
}

// WithBaseURL sets the archive API base URL.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithTimeout sets the per-request HTTP timeout. Streaming search bodies
// are exempt; they are read until the server closes them.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMaxResults caps how many search results are retained in memory.
// The reported total always reflects everything the stream delivered.
func WithMaxResults(n int) Option {
	return func(o *options) {
		o.maxResults = n
	}
}

// WithResultCache sets the completed-search cache size and entry lifetime.
func WithResultCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

func defaultOptions() options {
	return options{provider: "http"}
}
