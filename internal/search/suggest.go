package search

import (
	"context"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/crimson-sun/spyglass/internal/source"
)

// Suggester fetches field and value candidates from the source and
// re-ranks them fuzzily against the operator's partial input. Callers are
// expected to debounce keystrokes with their own Debouncer; the Suggester
// itself is stateless.
type Suggester struct {
	src source.Source
	max int
}

// NewSuggester creates a Suggester returning at most max candidates.
func NewSuggester(src source.Source, max int) *Suggester {
	if max <= 0 {
		max = 20
	}
	return &Suggester{src: src, max: max}
}

// fieldSource adapts field suggestions to fuzzy.Source.
type fieldSource []source.FieldSuggestion

func (f fieldSource) String(i int) string { return f[i].Field }
func (f fieldSource) Len() int            { return len(f) }

// Fields returns field-name candidates for a partial input, best first.
// An empty partial returns the server's own ordering.
func (s *Suggester) Fields(ctx context.Context, partial string) ([]source.FieldSuggestion, error) {
	fields, err := s.src.SuggestFields(ctx, partial)
	if err != nil {
		return nil, err
	}
	if partial == "" {
		return truncate(fields, s.max), nil
	}

	matches := fuzzy.FindFrom(partial, fieldSource(fields))
	ranked := make([]source.FieldSuggestion, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, fields[m.Index])
	}
	return truncate(ranked, s.max), nil
}

// Values returns value candidates for a field and partial input, best first.
func (s *Suggester) Values(ctx context.Context, field, partial string) ([]string, error) {
	values, err := s.src.SuggestValues(ctx, field, partial)
	if err != nil {
		return nil, err
	}
	if partial == "" {
		sort.Strings(values)
		return truncate(values, s.max), nil
	}

	matches := fuzzy.Find(partial, values)
	ranked := make([]string, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, m.Str)
	}
	return truncate(ranked, s.max), nil
}

func truncate[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}
