package spyglass

import (
	"context"

	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/viewer"
)

// Line is one rendered log line. Number is 1-based.
type Line struct {
	Number  int
	Content string
}

// FileView is a scrollable view over one archive file. Small files are
// fully resident; large files fetch line windows on demand.
type FileView struct {
	view *viewer.View
}

// ViewFile opens a file for browsing. Files never fail to open: when size
// information is unavailable the view degrades to windowed fetching with a
// conservative line estimate. Advisory reports any such degradation.
func (c *Client) ViewFile(ctx context.Context, file string) (*FileView, error) {
	meta, err := c.src.Metadata(ctx, file)
	if err != nil {
		meta = model.FileMetadata{}
	}
	v := viewer.Open(ctx, c.src, c.cfg.Viewer, c.b, file, meta, viewer.Filter{})
	return &FileView{view: v}, nil
}

// Lines returns the lines visible from offset for height rows, fetching
// whatever is not yet resident. Blocks until the fetch completes.
func (f *FileView) Lines(ctx context.Context, offset, height int) []Line {
	vp := viewer.Viewport{ScrollOffset: offset, Height: height, RowHeight: 1}
	internal := f.view.Lines(ctx, vp)
	out := make([]Line, len(internal))
	for i, l := range internal {
		out[i] = Line{Number: l.Index + 1, Content: l.Content}
	}
	return out
}

// Filter narrows the view to lines matching a search term and severity.
// Resident lines are discarded; the next Lines call refetches filtered.
func (f *FileView) Filter(search, severity string) {
	f.view.SetFilter(viewer.Filter{Search: search, Severity: model.Severity(severity)})
}

// TotalLines returns the known or estimated line count.
func (f *FileView) TotalLines() int { return f.view.TotalLines() }

// Advisory returns the degradation notice for this view, if any.
func (f *FileView) Advisory() string { return f.view.State().Advisory }

// Close waits for in-flight fetches and releases timers.
func (f *FileView) Close() { f.view.Close() }
