package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// streamSource implements source.Source for searches only.
type streamSource struct {
	mu       sync.Mutex
	payload  string
	calls    int
	requests []source.SearchRequest
	lastCtx  context.Context
	hang     bool // keep the stream open until cancelled
}

func (s *streamSource) StreamSearch(ctx context.Context, req source.SearchRequest) (io.ReadCloser, error) {
	s.mu.Lock()
	s.calls++
	s.requests = append(s.requests, req)
	s.lastCtx = ctx
	hang := s.hang
	s.mu.Unlock()
	if hang {
		pr, pw := io.Pipe()
		go func() {
			pw.Write([]byte(s.payload))
			<-ctx.Done()
			pw.Close()
		}()
		return pr, nil
	}
	return io.NopCloser(strings.NewReader(s.payload)), nil
}

func (s *streamSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *streamSource) ChunkRange(context.Context, string, source.ChunkRequest) ([]string, error) {
	return nil, source.ErrUnsupported
}
func (s *streamSource) Paged(context.Context, string, int, int) ([]string, error) {
	return nil, source.ErrUnsupported
}
func (s *streamSource) Metadata(context.Context, string) (model.FileMetadata, error) {
	return model.FileMetadata{}, source.ErrUnsupported
}
func (s *streamSource) FullFile(context.Context, string) ([]string, int, error) {
	return nil, 0, source.ErrUnsupported
}
func (s *streamSource) SuggestFields(context.Context, string) ([]source.FieldSuggestion, error) {
	return nil, source.ErrUnsupported
}
func (s *streamSource) SuggestValues(context.Context, string, string) ([]string, error) {
	return nil, source.ErrUnsupported
}
func (s *streamSource) Export(context.Context, string, string, model.Severity) (io.ReadCloser, error) {
	return nil, source.ErrUnsupported
}
func (s *streamSource) RawURL(file string) string { return "fake://" + file }

func searchConfig() config.SearchConfig {
	cfg := config.Load().Search
	cfg.BatchInterval = 10 * time.Millisecond
	return cfg
}

func TestSearchEndToEnd(t *testing.T) {
	src := &streamSource{payload: ndjson(42)}
	s := NewSearcher(src, searchConfig(), nil)

	col, err := s.Search(context.Background(), source.SearchRequest{Query: "line"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Total() != 42 {
		t.Fatalf("expected 42 results, got %d", col.Total())
	}
	results := col.Results()
	for i, r := range results {
		if r.LineNumber != i+1 {
			t.Fatalf("order broken at %d", i)
		}
	}
}

func TestSearchServedFromCache(t *testing.T) {
	src := &streamSource{payload: ndjson(5)}
	s := NewSearcher(src, searchConfig(), nil)
	req := source.SearchRequest{Query: "line", Limit: 50}

	first, err := s.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.callCount() != 1 {
		t.Fatalf("expected 1 endpoint call, got %d", src.callCount())
	}
	if first.Total() != second.Total() {
		t.Fatalf("cache changed totals: %d vs %d", first.Total(), second.Total())
	}
}

func TestSearchDistinctQueriesNotCached(t *testing.T) {
	src := &streamSource{payload: ndjson(5)}
	s := NewSearcher(src, searchConfig(), nil)

	s.Search(context.Background(), source.SearchRequest{Query: "alpha", Limit: 50})
	s.Search(context.Background(), source.SearchRequest{Query: "beta", Limit: 50})

	if src.callCount() != 2 {
		t.Fatalf("expected 2 endpoint calls for distinct queries, got %d", src.callCount())
	}
}

func TestSearchAutoOptimize(t *testing.T) {
	src := &streamSource{payload: ndjson(1)}
	cfg := searchConfig()
	s := NewSearcher(src, cfg, nil)

	s.Search(context.Background(), source.SearchRequest{Query: "q", Limit: cfg.OptimizeLimit})
	s.Search(context.Background(), source.SearchRequest{Query: "r", Limit: 10})

	if !src.requests[0].Optimized {
		t.Fatal("expected optimized mode at the volume threshold")
	}
	if src.requests[1].Optimized {
		t.Fatal("did not expect optimized mode for a small limit")
	}
}

func TestSearchNewSearchCancelsPrevious(t *testing.T) {
	src := &streamSource{payload: ndjson(3), hang: true}
	s := NewSearcher(src, searchConfig(), nil)

	done := make(chan *Collection, 1)
	go func() {
		col, err := s.Search(context.Background(), source.SearchRequest{Query: "first"})
		if err != nil {
			t.Errorf("cancelled search must not error: %v", err)
		}
		done <- col
	}()

	time.Sleep(50 * time.Millisecond) // let the first stream open and hang

	src.mu.Lock()
	src.hang = false
	src.mu.Unlock()
	if _, err := s.Search(context.Background(), source.SearchRequest{Query: "second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first search did not stop after cancellation")
	}
}

func TestSearchCacheHitCancelsPrevious(t *testing.T) {
	src := &streamSource{payload: ndjson(3)}
	s := NewSearcher(src, searchConfig(), nil)
	cached := source.SearchRequest{Query: "cached", Limit: 50}

	// Prime the cache, then leave a second search hanging on its stream.
	if _, err := s.Search(context.Background(), cached); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.mu.Lock()
	src.hang = true
	src.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Search(context.Background(), source.SearchRequest{Query: "slow"}); err != nil {
			t.Errorf("cancelled search must not error: %v", err)
		}
	}()
	time.Sleep(50 * time.Millisecond) // let the slow stream open and hang

	// Replaying the cached query is a new submission: it must stop the
	// in-flight search even though no stream is opened for it.
	if _, err := s.Search(context.Background(), cached); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.callCount() != 2 {
		t.Fatalf("expected the replay to be cache-served, got %d endpoint calls", src.callCount())
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight search still running after a cache-served submission")
	}
}

func TestSearchReleasesContextWhenDone(t *testing.T) {
	src := &streamSource{payload: ndjson(2)}
	s := NewSearcher(src, searchConfig(), nil)

	if _, err := s.Search(context.Background(), source.SearchRequest{Query: "q"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.mu.Lock()
	ctx := src.lastCtx
	src.mu.Unlock()
	if ctx.Err() == nil {
		t.Fatal("expected the operation context to be released after completion")
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	src := &streamSource{payload: ""}
	cfg := searchConfig()
	s := NewSearcher(src, cfg, nil)

	col, err := s.Search(context.Background(), source.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.requests[0].Limit != cfg.DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", cfg.DefaultLimit, src.requests[0].Limit)
	}
	if col.Total() != 0 {
		t.Fatalf("expected empty result set, got %d", col.Total())
	}
}

func TestSearchMalformedScenario(t *testing.T) {
	// 237 NDJSON lines, 2 malformed: exactly 235 enter the collection.
	var sb strings.Builder
	n := 0
	for i := 1; i <= 237; i++ {
		if i == 10 || i == 200 {
			sb.WriteString("not json at all\n")
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf(`{"file":"a.log","line_number":%d,"content":"c"}`, n) + "\n")
	}

	src := &streamSource{payload: sb.String()}
	s := NewSearcher(src, searchConfig(), nil)
	col, err := s.Search(context.Background(), source.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Total() != 235 {
		t.Fatalf("expected totalResultsFound=235, got %d", col.Total())
	}
}
