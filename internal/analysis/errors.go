package analysis

import (
	"errors"
	"fmt"
)

// Kind is the coarse error category callers switch on. HTTP handlers map each
// kind to a status class; nothing inside the pipeline retries on any of them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindUpstream
)

// Error carries a kind alongside the usual message/cause chain.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ErrValidation wraps err as a caller-facing validation failure.
func ErrValidation(msg string, err error) *Error { return newError(KindValidation, msg, err) }

// ErrNotFound wraps err as a missing-entity failure.
func ErrNotFound(msg string, err error) *Error { return newError(KindNotFound, msg, err) }

// ErrAuthorization wraps err as an access failure.
func ErrAuthorization(msg string, err error) *Error { return newError(KindAuthorization, msg, err) }

// ErrUpstream wraps err as a hosting-API failure.
func ErrUpstream(msg string, err error) *Error { return newError(KindUpstream, msg, err) }

// ErrReportNotFound is the sentinel report stores return for a missing
// report id. Declared here so the pipeline can match it without depending on
// a concrete store package.
var ErrReportNotFound = errors.New("report not found")

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
