package arxiv

import (
	"errors"
	"fmt"
)

// ErrNoEntry is returned when a well-formed feed contains no entry.
var ErrNoEntry = errors.New("arxiv: no entry found")

// FetchError reports a failure reaching the arXiv API: transport errors,
// non-200 responses and context cancellation.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("arxiv fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("arxiv fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed or incomplete arXiv document.
type ParseError struct {
	Field string // empty for XML syntax errors
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("arxiv parse: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("arxiv parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing required element")

// IsAbsent reports whether err means "no metadata available": a fetch
// failure, a parse failure or an empty feed.
func IsAbsent(err error) bool {
	var fe *FetchError
	var pe *ParseError
	return errors.Is(err, ErrNoEntry) || errors.As(err, &fe) || errors.As(err, &pe)
}
