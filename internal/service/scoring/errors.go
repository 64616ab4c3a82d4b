package scoring

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scoring service layer.
var (
	ErrNotFound            = errors.New("not found")
	ErrRunInProgress       = errors.New("scoring run already in progress for account")
	ErrGlobalConfigMissing = errors.New("global scoring config missing")
	ErrGlobalConfigDelete  = errors.New("global scoring config cannot be deleted")
	ErrNoLatestResult      = errors.New("no completed scoring run for account")
)

// ErrorKind classifies run failures for run records and HTTP mapping.
type ErrorKind string

const (
	KindUpstreamFetch    ErrorKind = "upstream_fetch"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindConfigResolution ErrorKind = "config_resolution"
	KindPersistence      ErrorKind = "persistence"
	KindTimeout          ErrorKind = "timeout"
)

// RunError wraps a run failure with its kind. Use KindOf to recover the
// kind from a wrapped chain.
type RunError struct {
	Kind ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newRunError(kind ErrorKind, err error) *RunError {
	return &RunError{Kind: kind, Err: err}
}

// KindOf returns the classification of err, or the empty string when the
// chain carries no RunError.
func KindOf(err error) ErrorKind {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
