package viewer

import (
	"context"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// View is one file selection: the policy decision, the line cache, and (in
// chunked mode) the virtualizer, behind a single surface the presentation
// layer reads from.
type View struct {
	state ViewState
	cache *LineRangeCache
	virt  *Virtualizer
	full  []string // content in full mode
	src   source.Source
	cfg   config.ViewerConfig
	bus   *bus.Bus
}

// Open selects a file: runs the size policy and wires the matching read
// path. Policy failures degrade, they do not error; the returned View is
// always usable.
func Open(ctx context.Context, src source.Source, cfg config.ViewerConfig, b *bus.Bus, file string, meta model.FileMetadata, filter Filter) *View {
	v := &View{src: src, cfg: cfg, bus: b}
	v.state = NewViewState(file).WithFilter(filter)
	v.publishStatus()

	policy := NewFileSizePolicy(src, cfg)
	decision := policy.Decide(ctx, file, meta)
	v.state = v.state.WithDecision(decision)

	v.cache = NewLineRangeCache(file, filter)
	if decision.Mode == ModeFull {
		v.full = decision.Content
	} else {
		loader := NewChunkLoader(src, v.cache, file)
		v.virt = NewVirtualizer(loader, v.cache, cfg, decision.TotalLines, filter)
	}

	v.publishStatus()
	return v
}

// State returns the current view state record.
func (v *View) State() ViewState { return v.state }

// Lines materializes the lines for a viewport. In full mode this is a
// slice of the cached content; in chunked mode it goes through the
// virtualizer, fetching whatever is missing.
func (v *View) Lines(ctx context.Context, vp Viewport) []model.LogLine {
	if v.state.Mode == ModeFull {
		start, end := vp.VisibleRange()
		if end > len(v.full) {
			end = len(v.full)
		}
		if start > end {
			start = end
		}
		out := make([]model.LogLine, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, model.LogLine{Index: i, Content: v.full[i]})
		}
		return out
	}
	return v.virt.Refresh(ctx, vp)
}

// OnScroll is the debounced entry point for scroll-driven recomputation.
// In full mode the render is immediate: everything is already resident.
func (v *View) OnScroll(ctx context.Context, vp Viewport, render func([]model.LogLine)) {
	if v.state.Mode == ModeFull {
		render(v.Lines(ctx, vp))
		return
	}
	v.virt.OnScroll(ctx, vp, render)
}

// SetFilter swaps the active filter, clearing the line cache and loaded
// ranges in full. Chunked views refetch lazily on the next viewport.
func (v *View) SetFilter(filter Filter) {
	v.state = v.state.WithFilter(filter)
	v.cache.Reset(v.state.File, filter)
	if v.virt != nil {
		v.virt.SetFilter(filter)
	}
	v.state = v.state.WithStatus(model.StatusOK)
	v.publishStatus()
}

// TotalLines returns the decided or estimated total line count.
func (v *View) TotalLines() int { return v.state.TotalLines }

// Close releases timers and waits for in-flight fetches.
func (v *View) Close() {
	if v.virt != nil {
		v.virt.Close()
	}
}

func (v *View) publishStatus() {
	if v.bus == nil {
		return
	}
	v.bus.Publish(bus.Event{
		Type:     bus.EventViewStatus,
		Status:   v.state.Status,
		Advisory: v.state.Advisory,
		File:     v.state.File,
	})
}
