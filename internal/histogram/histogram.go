// Package histogram buckets a result snapshot into fixed-count time buckets
// with per-bucket severity breakdowns, for density visualization and
// range selection.
package histogram

import (
	"regexp"
	"time"

	"github.com/crimson-sun/spyglass/internal/model"
)

// DefaultBuckets is the fixed bucket count for one histogram build.
const DefaultBuckets = 50

// Bucket is one time slice of the histogram. Never mutated after the build.
type Bucket struct {
	Start        time.Time
	End          time.Time
	Total        int
	ErrorCount   int
	WarningCount int
	InfoCount    int
}

// Builder aggregates result snapshots. Results whose timestamp cannot be
// resolved are excluded from the histogram but stay in the result set.
type Builder struct {
	Buckets        int
	PreferredField string
}

// New creates a Builder with the default bucket count.
func New(preferredField string) *Builder {
	return &Builder{Buckets: DefaultBuckets, PreferredField: preferredField}
}

// Fallback timestamp field names, tried after the preferred field.
var fallbackFields = []string{
	"timestamp", "@timestamp", "time", "ts", "datetime", "date", "created_at", "logged_at",
}

// ISO-like timestamp embedded in unstructured text.
var isoPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?`)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// Build computes the histogram for one snapshot. If the resolved time range
// collapses to a near-zero span, a single bucket holds all points rather
// than dividing by zero.
func (b *Builder) Build(results []model.SearchResult) []Bucket {
	count := b.Buckets
	if count <= 0 {
		count = DefaultBuckets
	}

	type point struct {
		t   time.Time
		sev model.Severity
	}
	var points []point
	var minT, maxT time.Time

	for _, r := range results {
		t, ok := b.resolveTimestamp(r)
		if !ok {
			continue
		}
		points = append(points, point{t: t, sev: model.DeriveSeverity(r)})
		if minT.IsZero() || t.Before(minT) {
			minT = t
		}
		if maxT.IsZero() || t.After(maxT) {
			maxT = t
		}
	}
	if len(points) == 0 {
		return nil
	}

	span := maxT.Sub(minT)
	if span < time.Millisecond {
		bucket := Bucket{Start: minT, End: maxT.Add(time.Millisecond)}
		for _, p := range points {
			bucket.count(p.sev)
		}
		return []Bucket{bucket}
	}

	bucketSize := span / time.Duration(count)
	if bucketSize <= 0 {
		bucketSize = time.Millisecond
	}
	buckets := make([]Bucket, count)
	for i := range buckets {
		buckets[i].Start = minT.Add(time.Duration(i) * bucketSize)
		buckets[i].End = buckets[i].Start.Add(bucketSize)
	}
	// The last bucket absorbs rounding at the max edge.
	buckets[count-1].End = maxT

	for _, p := range points {
		idx := int(p.t.Sub(minT) / bucketSize)
		if idx >= count {
			idx = count - 1
		}
		buckets[idx].count(p.sev)
	}
	return buckets
}

func (bk *Bucket) count(sev model.Severity) {
	bk.Total++
	switch sev {
	case model.SeverityError:
		bk.ErrorCount++
	case model.SeverityWarning:
		bk.WarningCount++
	default:
		bk.InfoCount++
	}
}

// resolveTimestamp tries the preferred field, then the fallback list, then
// (only for unstructured content) an ISO-like scan of the raw text.
func (b *Builder) resolveTimestamp(r model.SearchResult) (time.Time, bool) {
	if b.PreferredField != "" {
		if t, ok := parseValue(r.Field(b.PreferredField)); ok {
			return t, true
		}
	}
	for _, f := range fallbackFields {
		if f == b.PreferredField {
			continue
		}
		if t, ok := parseValue(r.Field(f)); ok {
			return t, true
		}
	}
	if r.Match == nil || len(r.Match.ParsedFields) == 0 {
		if m := isoPattern.FindString(r.Content); m != "" {
			return parseString(m)
		}
	}
	return time.Time{}, false
}

// parseValue interprets the loosely-typed values JSON decoding produces:
// RFC 3339-ish strings, or unix epoch numbers in seconds or milliseconds.
func parseValue(v any) (time.Time, bool) {
	switch n := v.(type) {
	case string:
		return parseString(n)
	case float64:
		switch {
		case n <= 0:
			return time.Time{}, false
		case n > 1e12: // epoch milliseconds
			return time.UnixMilli(int64(n)).UTC(), true
		default: // epoch seconds
			return time.Unix(int64(n), 0).UTC(), true
		}
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
