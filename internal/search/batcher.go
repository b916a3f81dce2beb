package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/crimson-sun/spyglass/internal/model"
)

// FlushFunc receives each completed batch, in stream order.
type FlushFunc func(batch []model.SearchResult)

// BatcherOptions tune the size-or-time flush policy.
type BatcherOptions struct {
	Size     int
	Interval time.Duration
}

// StreamBatcher consumes a newline-delimited JSON stream incrementally,
// validates each record, and emits bounded batches when either the size
// threshold is reached or the interval since the first unflushed record
// elapses — whichever comes first. One malformed line never aborts the
// stream; it is logged and dropped.
type StreamBatcher struct {
	flushFn  FlushFunc
	size     int
	interval time.Duration

	mu        sync.Mutex
	pending   string // trailing, possibly incomplete line
	batch     []model.SearchResult
	timer     *time.Timer
	emitted   int
	malformed int
	dropped   int
}

// NewStreamBatcher creates a batcher delivering to flushFn.
func NewStreamBatcher(opts BatcherOptions, flushFn FlushFunc) *StreamBatcher {
	size := opts.Size
	if size <= 0 {
		size = 50
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &StreamBatcher{flushFn: flushFn, size: size, interval: interval}
}

// Emitted returns the count of records handed to the flush function.
func (b *StreamBatcher) Emitted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.emitted
}

// Malformed returns the count of undecodable lines skipped.
func (b *StreamBatcher) Malformed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.malformed
}

// Dropped returns the count of records rejected by validation.
func (b *StreamBatcher) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Consume reads the stream to completion. Fragments are split on newlines;
// the last, possibly incomplete segment is buffered until the next fragment
// completes it. End-of-stream forces a final flush, with any trailing
// unterminated text parsed as a last-chance record. Cancellation stops the
// loop between fragments and discards the unflushed remainder; it is
// reported as ctx.Err(), never as a stream failure.
func (b *StreamBatcher) Consume(ctx context.Context, r io.Reader) error {
	fragments := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(fragments)
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				frag := make([]byte, n)
				copy(frag, buf[:n])
				select {
				case fragments <- frag:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			b.discard()
			return ctx.Err()

		case <-b.flushCh():
			b.flush()

		case frag, ok := <-fragments:
			if !ok {
				// End of stream: the remaining buffered text gets one
				// last chance to decode, then everything flushes.
				b.finish()
				select {
				case err := <-readErr:
					return fmt.Errorf("stream read: %w", err)
				default:
					return nil
				}
			}
			b.ingest(string(frag))
		}
	}
}

// ingest appends a fragment, parses every complete line, and flushes if the
// batch reached the size threshold.
func (b *StreamBatcher) ingest(fragment string) {
	b.mu.Lock()
	text := b.pending + fragment
	lines := strings.Split(text, "\n")
	b.pending = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		b.addLine(line)
	}
	full := len(b.batch) >= b.size
	b.mu.Unlock()

	if full {
		b.flush()
	}
}

// addLine decodes and validates one complete line. Caller holds the lock.
func (b *StreamBatcher) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	var record model.SearchResult
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		b.malformed++
		slog.Debug("skipping malformed stream line", "error", err)
		return
	}

	clean, err := sanitize(record)
	if err != nil {
		b.dropped++
		slog.Debug("dropping invalid record", "error", err)
		return
	}

	b.batch = append(b.batch, clean)
	if len(b.batch) == 1 {
		// First unflushed record — start the interval timer.
		b.timer = time.NewTimer(b.interval)
	}
}

// flushCh returns the timer's channel, or nil if no timer is active.
func (b *StreamBatcher) flushCh() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

// flush hands the current batch to the flush function, split into
// size-bounded slices when a single fragment carried more than one
// batch worth of lines.
func (b *StreamBatcher) flush() {
	b.mu.Lock()
	batch := b.batch
	b.batch = nil
	b.stopTimerLocked()
	b.emitted += len(batch)
	b.mu.Unlock()

	for len(batch) > 0 {
		n := len(batch)
		if n > b.size {
			n = b.size
		}
		b.flushFn(batch[:n])
		batch = batch[n:]
	}
}

// finish parses any trailing unterminated text and flushes the remainder.
func (b *StreamBatcher) finish() {
	b.mu.Lock()
	if b.pending != "" {
		b.addLine(b.pending)
		b.pending = ""
	}
	b.mu.Unlock()
	b.flush()
}

// discard drops the unflushed batch and stops the timer. Records arriving
// after cancellation must not be appended anywhere.
func (b *StreamBatcher) discard() {
	b.mu.Lock()
	b.batch = nil
	b.pending = ""
	b.stopTimerLocked()
	b.mu.Unlock()
}

func (b *StreamBatcher) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
