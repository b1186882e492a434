package notfound

import (
	"errors"
	"fmt"
)

var (
	// ErrProbeFailed is returned when the synthetic not-found request could
	// not be completed.
	ErrProbeFailed = errors.New("404 probe request failed")

	// ErrReferenceUnavailable is returned by the engine when no reference
	// could be obtained for a directory.
	ErrReferenceUnavailable = errors.New("404 reference unavailable")

	// ErrMalformedInput is returned when a response carries no usable URL.
	ErrMalformedInput = errors.New("malformed input")
)

// DetectionError reports a failed 404 decision for a specific directory key.
// Callers pick the fallback policy; the engine never guesses.
type DetectionError struct {
	Key Key
	URL string
	Err error
}

func (e *DetectionError) Error() string {
	if e.Key == (Key{}) {
		return fmt.Sprintf("404 detection failed for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("404 detection failed for %s (key %s): %v", e.URL, e.Key, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }
