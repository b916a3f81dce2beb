// Package bus is the explicit message channel between the core and the
// presentation layer: the core publishes, presentation subscribes. It
// replaces any reachable global callback hook.
package bus

import (
	"log/slog"
	"sync"

	"github.com/crimson-sun/spyglass/internal/model"
)

const subscriberBuffer = 256

// EventType identifies what a bus event carries.
type EventType string

const (
	EventViewStatus   EventType = "view_status"
	EventSearchStatus EventType = "search_status"
	EventBatch        EventType = "batch"
	EventTruncated    EventType = "truncated"
	EventAdvisory     EventType = "advisory"
)

// Event is one notification from the core. Fields beyond Type are populated
// per event type; consumers ignore what they do not care about.
type Event struct {
	Type     EventType
	Status   model.Status
	Advisory string
	File     string
	Op       string // search operation id
	Batch    []model.SearchResult
	Total    int
}

// Bus broadcasts events to all subscribers. Slow subscribers drop events
// rather than blocking the core.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	dropped     int64
	closed      bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe returns a buffered channel that will receive every published
// event. The channel is closed by Close.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subscribers = append(b.subscribers, ch)
	}
	b.mu.Unlock()
	return ch
}

// Publish sends the event to all subscribers. If a subscriber's channel is
// full, the event is dropped for that subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.dropped++
			slog.Debug("bus: dropped event for slow subscriber",
				"type", ev.Type, "total_dropped", b.dropped)
		}
	}
}

// Dropped returns the total number of events dropped for slow subscribers.
func (b *Bus) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close closes all subscriber channels. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
