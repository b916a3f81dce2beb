package source

import (
	"context"
	"errors"
	"io"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
)

// ErrUnsupported is returned by a source for endpoints its backend does not
// expose. Callers treat it like any other transport failure: try the next
// strategy in the chain.
var ErrUnsupported = errors.New("source: endpoint not supported")

// Source defines the interface all log archive backends must implement.
// Every method is allowed to fail; callers own the fallback chains.
type Source interface {
	// ChunkRange fetches a bounded, optionally filtered line range.
	ChunkRange(ctx context.Context, file string, req ChunkRequest) ([]string, error)

	// Paged fetches an unfiltered page of lines by offset. Fallback for
	// backends without a range endpoint.
	Paged(ctx context.Context, file string, offset, limit int) ([]string, error)

	// Metadata fetches size information for a file.
	Metadata(ctx context.Context, file string) (model.FileMetadata, error)

	// FullFile fetches the entire file content plus its total line count.
	FullFile(ctx context.Context, file string) ([]string, int, error)

	// StreamSearch submits a search and returns the NDJSON response body
	// for incremental consumption. The caller owns the ReadCloser.
	StreamSearch(ctx context.Context, req SearchRequest) (io.ReadCloser, error)

	// SuggestFields returns candidate field names for a partial input.
	SuggestFields(ctx context.Context, partial string) ([]FieldSuggestion, error)

	// SuggestValues returns candidate values for a field and partial input.
	SuggestValues(ctx context.Context, field, partial string) ([]string, error)

	// Export streams filtered file content for download. On failure the
	// caller falls back to RawURL.
	Export(ctx context.Context, file, search string, severity model.Severity) (io.ReadCloser, error)

	// RawURL returns a direct download link for a file, used as the export
	// fallback surfaced to the operator.
	RawURL(file string) string
}

// ChunkRequest describes one bounded line-range fetch.
type ChunkRequest struct {
	Start    int
	Limit    int
	Search   string
	Severity model.Severity
}

// SearchRequest is the body of a streaming search submission. Every field
// that changes result semantics participates in the result cache key.
type SearchRequest struct {
	Query        string `json:"query"`
	Limit        int    `json:"limit"`
	ContextLines int    `json:"context_lines"`
	GitLabOnly   bool   `json:"gitlab_only"`
	Optimized    bool   `json:"optimized"`
	CrossNode    bool   `json:"cross_node,omitempty"`
	NodeID       string `json:"node_id,omitempty"`
}

// FieldSuggestion is one candidate from the fields endpoint.
type FieldSuggestion struct {
	Field        string   `json:"field"`
	Type         string   `json:"type"`
	Description  string   `json:"description,omitempty"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// Constructor is a function that creates a new Source instance.
type Constructor func(cfg config.SourceConfig) Source
