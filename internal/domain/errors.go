package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by the link store when the url is already stored.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotifierMisconfigured signals missing notification credentials.
	ErrNotifierMisconfigured = errors.New("notifier misconfigured")
	// ErrMissingPublishDate is returned when an article page carries no publish date.
	ErrMissingPublishDate = errors.New("missing publish date")
	// ErrURLTooLong is returned for candidate links that do not fit the url column.
	ErrURLTooLong = errors.New("url too long")
)

// Severity tells the pipeline whether an error ends the run or only the current candidate.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	if s == SeverityRecoverable {
		return "recoverable"
	}
	return "fatal"
}

// PipelineError carries the failed operation and its severity.
type PipelineError struct {
	Severity Severity
	Op       string
	URL      string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as an error that aborts the whole run.
func Fatal(op, url string, err error) error {
	return &PipelineError{Severity: SeverityFatal, Op: op, URL: url, Err: err}
}

// Recoverable wraps err as an error that only skips the current candidate.
func Recoverable(op, url string, err error) error {
	return &PipelineError{Severity: SeverityRecoverable, Op: op, URL: url, Err: err}
}

// IsRecoverable reports whether err was marked recoverable. Unclassified errors are fatal.
func IsRecoverable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Severity == SeverityRecoverable
	}
	return false
}
