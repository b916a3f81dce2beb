package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
	"github.com/crimson-sun/spyglass/internal/source/httpclient"
)

func init() {
	source.Register("http", func(cfg config.SourceConfig) source.Source {
		return New(cfg)
	})
}

// Source talks to a log archive server over its REST API. Line-range reads
// go through a rate limiter so a fast scroll cannot storm the server.
type Source struct {
	client  *httpclient.Client
	limiter *rate.Limiter
	baseURL string
}

// New creates a Source for the configured endpoint.
func New(cfg config.SourceConfig) *Source {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 20
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}
	var opts []httpclient.Option
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	return &Source{
		client:  httpclient.New(cfg.Endpoint, cfg.APIKey, opts...),
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		baseURL: cfg.Endpoint,
	}
}

type chunkResponse struct {
	Lines []string `json:"lines"`
}

type pageResponse struct {
	Content []string `json:"content"`
}

type fullResponse struct {
	Content    []string `json:"content"`
	TotalLines int      `json:"total_lines"`
}

func (s *Source) ChunkRange(ctx context.Context, file string, req source.ChunkRequest) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start", strconv.Itoa(req.Start))
	q.Set("limit", strconv.Itoa(req.Limit))
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Severity != "" {
		q.Set("severity", string(req.Severity))
	}

	var resp chunkResponse
	if err := s.client.GetJSON(ctx, filePath(file)+"/chunk", q, &resp); err != nil {
		return nil, fmt.Errorf("chunk range: %w", err)
	}
	return resp.Lines, nil
}

func (s *Source) Paged(ctx context.Context, file string, offset, limit int) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("lines", strconv.Itoa(limit))

	var resp pageResponse
	if err := s.client.GetJSON(ctx, filePath(file)+"/page", q, &resp); err != nil {
		return nil, fmt.Errorf("paged read: %w", err)
	}
	return resp.Content, nil
}

func (s *Source) Metadata(ctx context.Context, file string) (model.FileMetadata, error) {
	var meta model.FileMetadata
	if err := s.client.GetJSON(ctx, filePath(file)+"/metadata", nil, &meta); err != nil {
		return model.FileMetadata{}, fmt.Errorf("metadata: %w", err)
	}
	return meta, nil
}

func (s *Source) FullFile(ctx context.Context, file string) ([]string, int, error) {
	var resp fullResponse
	if err := s.client.GetJSON(ctx, filePath(file), nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("full file: %w", err)
	}
	total := resp.TotalLines
	if total == 0 {
		total = len(resp.Content)
	}
	return resp.Content, total, nil
}

func (s *Source) StreamSearch(ctx context.Context, req source.SearchRequest) (io.ReadCloser, error) {
	body, err := s.client.PostStream(ctx, "/api/search", req)
	if err != nil {
		return nil, fmt.Errorf("stream search: %w", err)
	}
	return body, nil
}

func (s *Source) SuggestFields(ctx context.Context, partial string) ([]source.FieldSuggestion, error) {
	q := url.Values{}
	if partial != "" {
		q.Set("partial", partial)
	}
	var fields []source.FieldSuggestion
	if err := s.client.GetJSON(ctx, "/api/fields", q, &fields); err != nil {
		return nil, fmt.Errorf("suggest fields: %w", err)
	}
	return fields, nil
}

func (s *Source) SuggestValues(ctx context.Context, field, partial string) ([]string, error) {
	q := url.Values{}
	q.Set("field", field)
	if partial != "" {
		q.Set("partial", partial)
	}
	var values []string
	if err := s.client.GetJSON(ctx, "/api/fields/values", q, &values); err != nil {
		return nil, fmt.Errorf("suggest values: %w", err)
	}
	return values, nil
}

func (s *Source) Export(ctx context.Context, file, search string, severity model.Severity) (io.ReadCloser, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if severity != "" {
		q.Set("severity", string(severity))
	}
	body, err := s.client.GetStream(ctx, filePath(file)+"/export", q)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return body, nil
}

func (s *Source) RawURL(file string) string {
	return s.baseURL + filePath(file) + "/raw"
}

func filePath(file string) string {
	return "/api/files/" + url.PathEscape(file)
}
