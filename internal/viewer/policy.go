package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/source"
)

// Mode is the loading strategy chosen for a file.
type Mode string

const (
	ModeChunked Mode = "chunked"
	ModeFull    Mode = "full"
)

// Decision is the outcome of the size policy for one file selection.
type Decision struct {
	Mode       Mode
	TotalLines int
	Advisory   string   // user-visible note, empty when nothing is worth saying
	Content    []string // full file content, only in ModeFull
}

// FileSizePolicy decides whether a file is small enough to load whole or
// must be virtualized. Uncertainty always resolves toward chunked mode:
// an unknown total size is a risk, not an invitation to full-load.
type FileSizePolicy struct {
	src source.Source
	cfg config.ViewerConfig

	mu   sync.Mutex
	full map[string][]string // cached full content per file
}

// NewFileSizePolicy creates a policy backed by the given source.
func NewFileSizePolicy(src source.Source, cfg config.ViewerConfig) *FileSizePolicy {
	return &FileSizePolicy{
		src:  src,
		cfg:  cfg,
		full: make(map[string][]string),
	}
}

// Decide applies the decision order to the best-available metadata, which
// may be zero-valued when nothing is known yet. Deterministic for identical
// metadata.
func (p *FileSizePolicy) Decide(ctx context.Context, file string, meta model.FileMetadata) Decision {
	// Rule 1: known-large files are always chunked.
	if d, ok := p.decideFromMetadata(file, meta); ok {
		return d
	}

	// Rule 2: try to learn the size, then re-apply rule 1.
	if fetched, err := p.src.Metadata(ctx, file); err == nil {
		if d, ok := p.decideFromMetadata(file, fetched); ok {
			return d
		}
		meta = fetched
	} else {
		slog.Debug("metadata fetch failed", "file", file, "error", err)

		// Rule 3: no metadata; probe a single small chunk. If the chunk
		// endpoint answers, the file is reachable but of unknown size —
		// chunked for safety.
		if _, perr := p.src.ChunkRange(ctx, file, source.ChunkRequest{Start: 0, Limit: p.cfg.ProbeLines}); perr == nil {
			return Decision{
				Mode:       ModeChunked,
				TotalLines: estimateLines(meta, p.cfg.DefaultLines),
			}
		}
	}

	// Rule 4: full content already cached from an earlier visit.
	p.mu.Lock()
	cached, ok := p.full[file]
	p.mu.Unlock()
	if ok {
		return Decision{Mode: ModeFull, TotalLines: len(cached), Content: cached}
	}

	// Rule 5: both size and line count confirmed small.
	if meta.SizeBytes > 0 && meta.SizeBytes < p.cfg.FullLoadBytes &&
		meta.EstimatedLines > 0 && meta.EstimatedLines < p.cfg.FullLoadLines {
		return p.fullLoad(ctx, file, meta.EstimatedLines)
	}

	// Rule 6: nothing could be determined.
	return Decision{
		Mode:       ModeChunked,
		TotalLines: estimateLines(meta, p.cfg.DefaultLines),
		Advisory:   "file size could not be determined; showing a chunked view",
	}
}

// decideFromMetadata applies the known-large rule. Second return is false
// when the metadata does not settle the question.
func (p *FileSizePolicy) decideFromMetadata(file string, meta model.FileMetadata) (Decision, bool) {
	if meta.SizeBytes > p.cfg.ChunkedBytes || meta.EstimatedLines > p.cfg.ChunkedLines {
		d := Decision{
			Mode:       ModeChunked,
			TotalLines: estimateLines(meta, p.cfg.DefaultLines),
		}
		if meta.SizeBytes > 0 {
			d.Advisory = fmt.Sprintf("large file (%s); showing a chunked view",
				humanize.Bytes(uint64(meta.SizeBytes)))
		}
		return d, true
	}
	return Decision{}, false
}

// fullLoad fetches and caches the whole file. A fetch failure downgrades to
// chunked mode rather than surfacing an error.
func (p *FileSizePolicy) fullLoad(ctx context.Context, file string, estimated int) Decision {
	content, total, err := p.src.FullFile(ctx, file)
	if err != nil {
		slog.Debug("full-file fetch failed, falling back to chunked", "file", file, "error", err)
		return Decision{
			Mode:       ModeChunked,
			TotalLines: max(estimated, 1),
			Advisory:   "full load failed; showing a chunked view",
		}
	}
	p.mu.Lock()
	p.full[file] = content
	p.mu.Unlock()
	return Decision{Mode: ModeFull, TotalLines: total, Content: content}
}

// estimateLines picks the known line count or the conservative default.
func estimateLines(meta model.FileMetadata, fallback int) int {
	if meta.EstimatedLines > 0 {
		return meta.EstimatedLines
	}
	return fallback
}
