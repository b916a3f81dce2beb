package search

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/spyglass/internal/model"
)

var (
	errMissingFile    = errors.New("record has no file")
	errBadLineNumber  = errors.New("record line number is not positive")
)

// sanitize validates a decoded record and normalizes its content. Records
// that fail validation are dropped before they can reach the result
// collection; they must never corrupt downstream aggregates.
func sanitize(r model.SearchResult) (model.SearchResult, error) {
	if r.File == "" {
		return model.SearchResult{}, errMissingFile
	}
	if r.LineNumber <= 0 {
		return model.SearchResult{}, errBadLineNumber
	}

	// Archives mix encodings; NFC keeps visually identical lines
	// byte-identical so dedup and caching behave.
	r.Content = norm.NFC.String(strings.TrimRight(r.Content, "\r\n"))
	return r, nil
}
