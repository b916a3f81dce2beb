package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/source"
)

func newTestSource(srv *httptest.Server) *Source {
	return New(config.SourceConfig{
		Endpoint:  srv.URL,
		RateLimit: 1000, // tests should not sit in the limiter
		RateBurst: 100,
	})
}

func TestChunkRange(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"lines": []string{"l1", "l2", "l3"}})
	}))
	defer srv.Close()

	s := newTestSource(srv)
	lines, err := s.ChunkRange(context.Background(), "app.log", source.ChunkRequest{
		Start: 100, Limit: 50, Search: "timeout",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if gotPath != "/api/files/app.log/chunk" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	// url.Values.Encode sorts keys alphabetically
	if gotQuery != "limit=50&search=timeout&start=100" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestPaged(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"content": []string{"x"}})
	}))
	defer srv.Close()

	s := newTestSource(srv)
	lines, err := s.Paged(context.Background(), "app.log", 200, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "x" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if gotQuery != "lines=100&offset=200" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"size": 8388608, "estimated_lines": 50000, "size_mb": 8.0,
		})
	}))
	defer srv.Close()

	s := newTestSource(srv)
	meta, err := s.Metadata(context.Background(), "app.log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.SizeBytes != 8388608 || meta.EstimatedLines != 50000 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestFullFileDerivesTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []string{"a", "b"}})
	}))
	defer srv.Close()

	s := newTestSource(srv)
	lines, total, err := s.FullFile(context.Background(), "small.log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(lines) != 2 {
		t.Fatalf("expected total derived from content, got total=%d lines=%d", total, len(lines))
	}
}

func TestStreamSearchBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req source.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad search body: %v", err)
		}
		if req.Query != "status:500" || req.Limit != 100 || !req.Optimized {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"file":"a.log","line_number":7,"content":"boom"}` + "\n"))
	}))
	defer srv.Close()

	s := newTestSource(srv)
	body, err := s.StreamSearch(context.Background(), source.SearchRequest{
		Query: "status:500", Limit: 100, Optimized: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()
	sc := bufio.NewScanner(body)
	if !sc.Scan() {
		t.Fatal("expected one NDJSON line")
	}
}

func TestRegistry(t *testing.T) {
	ctor, err := source.Get("http")
	if err != nil {
		t.Fatalf("http provider not registered: %v", err)
	}
	if s := ctor(config.SourceConfig{Endpoint: "http://localhost"}); s == nil {
		t.Fatal("constructor returned nil source")
	}
	if _, err := source.Get("gopher"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRawURL(t *testing.T) {
	s := New(config.SourceConfig{Endpoint: "https://logs.example.com"})
	got := s.RawURL("nodes/web 1.log")
	want := "https://logs.example.com/api/files/nodes%2Fweb%201.log/raw"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
