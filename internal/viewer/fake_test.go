package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

var errDown = errors.New("endpoint down")

// fakeSource serves a synthetic file of totalLines lines and counts calls.
type fakeSource struct {
	mu         sync.Mutex
	totalLines int
	meta       model.FileMetadata
	metaErr    error
	chunkErr   error
	pagedErr   error
	fullErr    error

	chunkCalls []source.ChunkRequest
	pagedCalls int
	metaCalls  int
	fullCalls  int
}

func (f *fakeSource) line(i int) string { return fmt.Sprintf("line %d", i) }

func (f *fakeSource) serve(start, limit int) []string {
	var out []string
	for i := start; i < start+limit && i < f.totalLines; i++ {
		out = append(out, f.line(i))
	}
	return out
}

func (f *fakeSource) ChunkRange(_ context.Context, _ string, req source.ChunkRequest) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunkCalls = append(f.chunkCalls, req)
	if f.chunkErr != nil {
		return nil, f.chunkErr
	}
	return f.serve(req.Start, req.Limit), nil
}

func (f *fakeSource) Paged(_ context.Context, _ string, offset, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pagedCalls++
	if f.pagedErr != nil {
		return nil, f.pagedErr
	}
	return f.serve(offset, limit), nil
}

func (f *fakeSource) Metadata(context.Context, string) (model.FileMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	if f.metaErr != nil {
		return model.FileMetadata{}, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeSource) FullFile(context.Context, string) ([]string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullCalls++
	if f.fullErr != nil {
		return nil, 0, f.fullErr
	}
	return f.serve(0, f.totalLines), f.totalLines, nil
}

func (f *fakeSource) StreamSearch(context.Context, source.SearchRequest) (io.ReadCloser, error) {
	return nil, errDown
}

func (f *fakeSource) SuggestFields(context.Context, string) ([]source.FieldSuggestion, error) {
	return nil, errDown
}

func (f *fakeSource) SuggestValues(context.Context, string, string) ([]string, error) {
	return nil, errDown
}

func (f *fakeSource) Export(context.Context, string, string, model.Severity) (io.ReadCloser, error) {
	return nil, errDown
}

func (f *fakeSource) RawURL(file string) string { return "fake://" + file }

func (f *fakeSource) chunkCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunkCalls)
}
