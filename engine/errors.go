package engine

import (
	"errors"
	"strings"
)

// Sentinel errors returned synchronously from Connect/Disconnect, checked
// with errors.Is by callers.
var (
	ErrChannelIndexOutOfRange = errors.New("auragraph: channel index out of range")
	ErrChannelCountExceeded   = errors.New("auragraph: channel count exceeds MaxChannels")
	ErrCycle                  = errors.New("auragraph: connection would create a cycle")
	ErrNotConnected           = errors.New("auragraph: no such edge is connected")
	ErrAlreadyConnected       = errors.New("auragraph: edge already connected")
)

// AggregateError collects non-fatal setup errors (e.g. enumerating audio
// devices) without interrupting startup, adapted from the teacher's own
// multierr-style aggregate.
type AggregateError struct {
	errs []error
}

// Add appends err if non-nil.
func (a *AggregateError) Add(err error) {
	if err != nil {
		a.errs = append(a.errs, err)
	}
}

// ErrOrNil returns a itself if it holds any error, else nil — the usual
// pattern for returning an aggregate from a function signature expecting
// a plain error.
func (a *AggregateError) ErrOrNil() error {
	if len(a.errs) == 0 {
		return nil
	}
	return a
}

func (a *AggregateError) Error() string {
	parts := make([]string, len(a.errs))
	for i, e := range a.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the collected errors to errors.Is/errors.As.
func (a *AggregateError) Unwrap() []error { return a.errs }
