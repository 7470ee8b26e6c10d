package lola

import (
	"errors"
	"strings"
)

// Kind categorizes a LoLA failure so callers can tell a dead robot from a
// protocol mismatch.
type Kind string

const (
	// KindTransportUnavailable means the control socket could not be opened.
	KindTransportUnavailable Kind = "transport_unavailable"
	// KindTransport is an I/O failure on an open socket.
	KindTransport Kind = "transport"
	// KindFrameTruncated means the socket delivered less than a full state frame.
	KindFrameTruncated Kind = "frame_truncated"
	// KindDecode means a full frame arrived but is not the expected map.
	KindDecode Kind = "decode"
	// KindEncode means a control message could not be serialized.
	KindEncode Kind = "encode"
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrTransportUnavailable = &Error{Kind: KindTransportUnavailable}
	ErrTransport            = &Error{Kind: KindTransport}
	ErrFrameTruncated       = &Error{Kind: KindFrameTruncated}
	ErrDecode               = &Error{Kind: KindDecode}
	ErrEncode               = &Error{Kind: KindEncode}
)

// Error is returned by every fallible operation in this package.
type Error struct {
	// Op is the operation that failed, e.g. "read state".
	Op   string
	Kind Kind
	// Detail describes the failure when Cause alone is not enough.
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("lola")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(op string, kind Kind, detail string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Detail: detail, Cause: cause}
}

// KindOf returns the Kind of err, or "" if err did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
