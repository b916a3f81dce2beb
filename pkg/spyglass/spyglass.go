package spyglass

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/search"
	"github.com/crimson-sun/spyglass/internal/source"
	_ "github.com/crimson-sun/spyglass/internal/source/httpapi" // default provider
)

// ErrExportUnavailable is returned when the archive has no export endpoint
// for a file. The error message carries the raw download URL to use instead.
var ErrExportUnavailable = errors.New("spyglass: export unavailable")

// Client is a log archive browser.
// Safe for concurrent use.
type Client struct {
	cfg      config.Config
	src      source.Source
	b        *bus.Bus
	searcher *search.Searcher
	suggest  *search.Suggester
}

// New creates a Client. Configuration starts from SPYGLASS_* environment
// variables; options override.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg := config.Load()
	if o.provider != "" {
		cfg.Source.Provider = o.provider
	}
	if o.baseURL != "" {
		cfg.Source.Endpoint = o.baseURL
	}
	if o.token != "" {
		cfg.Source.APIKey = o.token
	}
	if o.timeout > 0 {
		cfg.Source.Timeout = o.timeout
	}
	if o.maxResults > 0 {
		cfg.Search.MaxResults = o.maxResults
	}
	if o.cacheSize > 0 {
		cfg.Search.CacheCapacity = o.cacheSize
		cfg.Search.CacheTTL = o.cacheTTL
	}

	ctor, err := source.Get(cfg.Source.Provider)
	if err != nil {
		return nil, fmt.Errorf("spyglass: %w", err)
	}
	src := ctor(cfg.Source)

	b := bus.New()
	return &Client{
		cfg:      cfg,
		src:      src,
		b:        b,
		searcher: search.NewSearcher(src, cfg.Search, b),
		suggest:  search.NewSuggester(src, 20),
	}, nil
}

// Close releases the client's event bus and cancels any active search.
func (c *Client) Close() {
	c.searcher.CancelActive()
	c.b.Close()
}

// Result is one search hit.
type Result struct {
	File       string
	LineNumber int
	Content    string
	NodeName   string
	Severity   string
	Fields     map[string]any
}

// ResultSet is the outcome of one search. Total always counts everything
// the server sent; Results holds at most the retained cap.
type ResultSet struct {
	Results   []Result
	Total     int
	Truncated bool
}

// SearchOptions narrow or widen a search beyond the plain query.
type SearchOptions struct {
	Limit        int    // <= 0 uses the configured default
	ContextLines int    // lines of context around each match
	GitLabOnly   bool   // restrict to GitLab-generated logs
	CrossNode    bool   // fan out across all nodes
	NodeID       string // restrict to one node
}

// Search runs a streaming search to completion. limit <= 0 uses the
// configured default. Starting a new search cancels a still-running one.
func (c *Client) Search(ctx context.Context, query string, limit int) (ResultSet, error) {
	return c.SearchWithOptions(ctx, query, SearchOptions{Limit: limit})
}

// SearchWithOptions is Search with the full set of request options.
func (c *Client) SearchWithOptions(ctx context.Context, query string, o SearchOptions) (ResultSet, error) {
	col, err := c.searcher.Search(ctx, source.SearchRequest{
		Query:        query,
		Limit:        o.Limit,
		ContextLines: o.ContextLines,
		GitLabOnly:   o.GitLabOnly,
		CrossNode:    o.CrossNode,
		NodeID:       o.NodeID,
	})
	if err != nil {
		return ResultSet{}, err
	}

	internal := col.Results()
	out := make([]Result, len(internal))
	for i, r := range internal {
		out[i] = resultFrom(r)
	}
	return ResultSet{Results: out, Total: col.Total(), Truncated: col.Truncated()}, nil
}

// Fields returns field-name suggestions for a partial input, best first.
func (c *Client) Fields(ctx context.Context, partial string) ([]string, error) {
	fields, err := c.suggest.Fields(ctx, partial)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names, nil
}

// Values returns value suggestions for a field.
func (c *Client) Values(ctx context.Context, field, partial string) ([]string, error) {
	return c.suggest.Values(ctx, field, partial)
}

// Export streams filtered file content. When the backend has no export
// endpoint the error wraps ErrExportUnavailable and RawURL gives the
// direct download link to offer instead.
func (c *Client) Export(ctx context.Context, file, query, severity string) (io.ReadCloser, error) {
	rc, err := c.src.Export(ctx, file, query, model.Severity(severity))
	if err != nil {
		return nil, fmt.Errorf("%w: download %s (%v)", ErrExportUnavailable, c.src.RawURL(file), err)
	}
	return rc, nil
}

// RawURL returns the direct download link for a file.
func (c *Client) RawURL(file string) string {
	return c.src.RawURL(file)
}

func resultFrom(r model.SearchResult) Result {
	out := Result{
		File:       r.File,
		LineNumber: r.LineNumber,
		Content:    r.Content,
		NodeName:   r.NodeName,
		Severity:   string(model.DeriveSeverity(r)),
	}
	if out.NodeName == "" {
		out.NodeName = r.NodeID
	}
	if r.Match != nil {
		out.Fields = r.Match.ParsedFields
	}
	return out
}
