package viewer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/debounce"
	"github.com/crimson-sun/spyglass/internal/model"
)

// Viewport describes the visible portion of the rendered file.
type Viewport struct {
	ScrollOffset int // pixels (or rows when RowHeight is 1)
	Height       int
	RowHeight    int
}

// VisibleRange converts a viewport into the half-open line range it covers,
// before buffering. RowHeight of zero is treated as one.
func (v Viewport) VisibleRange() (start, end int) {
	rh := v.RowHeight
	if rh <= 0 {
		rh = 1
	}
	start = v.ScrollOffset / rh
	end = (v.ScrollOffset + v.Height + rh - 1) / rh
	return start, end
}

// Window is one fixed-size fetch unit, aligned to the window size.
type Window struct {
	Start, End int
}

// Virtualizer turns scroll positions into the set of line ranges that must
// be resident, dispatches missing fetch windows, and materializes whatever
// the cache holds for rendering. Scroll-driven recomputation is debounced;
// programmatic triggers recompute immediately.
type Virtualizer struct {
	loader     *ChunkLoader
	cache      *LineRangeCache
	cfg        config.ViewerConfig
	totalLines int
	filter     Filter
	scroll     *debounce.Debouncer

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewVirtualizer creates a Virtualizer over an already-decided chunked view.
func NewVirtualizer(loader *ChunkLoader, cache *LineRangeCache, cfg config.ViewerConfig, totalLines int, filter Filter) *Virtualizer {
	return &Virtualizer{
		loader:     loader,
		cache:      cache,
		cfg:        cfg,
		totalLines: totalLines,
		filter:     filter,
		scroll:     debounce.New(cfg.ScrollDebounce),
	}
}

// TotalLines returns the line count the view was sized with.
func (v *Virtualizer) TotalLines() int { return v.totalLines }

// SetTotalLines adjusts the line count when a better estimate arrives.
func (v *Virtualizer) SetTotalLines(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.totalLines = n
}

// SetFilter swaps the filter applied to subsequent fetches. The caller
// resets the line cache alongside; resident lines from the old filter
// must not survive.
func (v *Virtualizer) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

func (v *Virtualizer) currentFilter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Range computes the buffered, clamped line range for a viewport.
func (v *Virtualizer) Range(vp Viewport) (start, end int) {
	start, end = vp.VisibleRange()
	start -= v.cfg.Buffer
	end += v.cfg.Buffer
	if start < 0 {
		start = 0
	}
	if end > v.totalLines {
		end = v.totalLines
	}
	if end < start {
		end = start
	}
	return start, end
}

// Windows partitions [start, end) into aligned fetch windows.
func (v *Virtualizer) Windows(start, end int) []Window {
	size := v.cfg.FetchWindow
	if size <= 0 {
		size = 100
	}
	var out []Window
	for ws := (start / size) * size; ws < end; ws += size {
		we := ws + size
		if we > v.totalLines {
			we = v.totalLines
		}
		if we <= ws {
			break
		}
		out = append(out, Window{Start: ws, End: we})
	}
	return out
}

// MissingWindows returns the fetch windows for [start, end) that are not
// yet in the loaded-ranges registry.
func (v *Virtualizer) MissingWindows(start, end int) []Window {
	var missing []Window
	for _, w := range v.Windows(start, end) {
		if !v.cache.IsLoaded(w.Start, w.End) {
			missing = append(missing, w)
		}
	}
	return missing
}

// OnScroll recomputes after the scroll debounce interval. The callback
// receives the lines resident once dispatched fetches complete; it may run
// on a background goroutine.
func (v *Virtualizer) OnScroll(ctx context.Context, vp Viewport, render func([]model.LogLine)) {
	v.scroll.Trigger(func() {
		render(v.Refresh(ctx, vp))
	})
}

// Refresh recomputes immediately: dispatches any missing windows
// concurrently, waits for them, then materializes the visible subrange from
// cache. Windows may complete out of order or fail individually; whatever
// landed is rendered and the rest is simply absent.
func (v *Virtualizer) Refresh(ctx context.Context, vp Viewport) []model.LogLine {
	start, end := v.Range(vp)
	filter := v.currentFilter()

	for _, w := range v.MissingWindows(start, end) {
		w := w
		v.wg.Add(1)
		go func() {
			defer v.wg.Done()
			if _, err := v.loader.Load(ctx, w.Start, w.End-w.Start, filter); err != nil && ctx.Err() == nil {
				slog.Warn("fetch window failed", "start", w.Start, "end", w.End, "error", err)
			}
		}()
	}
	v.wg.Wait()

	return v.cache.Lines(start, end)
}

// Close cancels the pending scroll timer. Must be called on teardown.
func (v *Virtualizer) Close() {
	v.scroll.Stop()
	v.wg.Wait()
}
