package printer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorKind classifies a transport failure
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindNotFound     ErrorKind = "not-found"
	KindAccessDenied ErrorKind = "access-denied"
	KindWriteError   ErrorKind = "write-error"
)

// Sentinels for errors.Is against a *TransportError
var (
	ErrTimeout      = &TransportError{Kind: KindTimeout}
	ErrNotFound     = &TransportError{Kind: KindNotFound}
	ErrAccessDenied = &TransportError{Kind: KindAccessDenied}
	ErrWriteFailed  = &TransportError{Kind: KindWriteError}
)

// TransportError is the only error Execute returns once bytes may have
// reached the device. It is never retried.
type TransportError struct {
	Kind         ErrorKind
	Op           string
	Transport    string
	BytesWritten int
	Err          error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Transport, e.Kind)
	if e.Transport == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.BytesWritten > 0 {
		msg += fmt.Sprintf(" after %d bytes", e.BytesWritten)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches any TransportError of the same kind
func (e *TransportError) Is(target error) bool {
	t, ok := target.(*TransportError)
	return ok && t.Kind == e.Kind
}

// classify maps a raw I/O error onto a TransportError
func classify(op, transport string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		out := *te
		if out.Op == "" {
			out.Op = op
		}
		if out.Transport == "" {
			out.Transport = transport
		}
		return &out
	}

	kind := KindWriteError
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindAccessDenied
	}
	return &TransportError{Kind: kind, Op: op, Transport: transport, Err: err}
}
