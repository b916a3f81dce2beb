package viewer

import "github.com/crimson-sun/spyglass/internal/model"

// ViewState is the single state record for one file-view operation. All
// transitions are pure: they return a new record and never mutate fields in
// place, so there is no window where cross-field invariants are violated.
type ViewState struct {
	File       string
	Mode       Mode
	TotalLines int
	Filter     Filter
	Status     model.Status
	Advisory   string
}

// NewViewState returns the state for a fresh file selection, before the
// size policy has run.
func NewViewState(file string) ViewState {
	return ViewState{File: file, Status: model.StatusLoading}
}

// WithDecision applies a size-policy outcome.
func (s ViewState) WithDecision(d Decision) ViewState {
	s.Mode = d.Mode
	s.TotalLines = d.TotalLines
	s.Advisory = d.Advisory
	if d.TotalLines == 0 {
		s.Status = model.StatusEmpty
	} else {
		s.Status = model.StatusOK
	}
	return s
}

// WithFilter replaces the active filter; the caller must reset the line
// cache alongside.
func (s ViewState) WithFilter(f Filter) ViewState {
	s.Filter = f
	s.Status = model.StatusLoading
	return s
}

// WithStatus replaces only the coarse status.
func (s ViewState) WithStatus(status model.Status) ViewState {
	s.Status = status
	return s
}

// WithError marks the view failed with a human-readable advisory.
func (s ViewState) WithError(advisory string) ViewState {
	s.Status = model.StatusError
	s.Advisory = advisory
	return s
}
