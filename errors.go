package apicall

import (
	"errors"
	"fmt"
	"github.com/ansel1/merry"
)

// Kind classifies the failures Execute can return.
type Kind int

// The failure kinds.  Each failure is detected at exactly one step of
// Client.Execute.
const (
	// InvalidTarget means the endpoint's base URL, path and query could not
	// be composed into a valid request.  Nothing was sent.
	InvalidTarget Kind = iota + 1
	// RequestFailed means the transport returned a response whose
	// status code is outside [200, 300).
	RequestFailed
	// DecodingFailed means the status was successful, but the body could
	// not be decoded into the response type.
	DecodingFailed
	// TransportFailed means the transport failed before a status was
	// obtained, e.g. connection refused, or the context was cancelled.
	TransportFailed
	// Unknown means the transport returned something which carries no
	// HTTP status code.
	Unknown
)

var kindNames = map[Kind]string{
	InvalidTarget:   "invalid target",
	RequestFailed:   "request failed",
	DecodingFailed:  "decoding failed",
	TransportFailed: "transport failed",
	Unknown:         "unknown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrNotHTTPResponse is the cause carried by Unknown errors.
var ErrNotHTTPResponse = merry.New("invalid response: not an HTTP response")

// Sentinels for matching with errors.Is:
//
//	if errors.Is(err, apicall.ErrRequestFailed) {
//	    ...
//	}
//
// They only match on Kind.
var (
	ErrInvalidTarget   = &Error{Kind: InvalidTarget}
	ErrRequestFailed   = &Error{Kind: RequestFailed}
	ErrDecodingFailed  = &Error{Kind: DecodingFailed}
	ErrTransportFailed = &Error{Kind: TransportFailed}
	ErrUnknown         = &Error{Kind: Unknown}
)

// Error is the error returned by Client.Execute and everything built on it.
//
// StatusCode is only set for RequestFailed.  Err is the underlying cause, and
// is returned by Unwrap.  RequestFailed errors have no cause: the status code
// is the only diagnostic.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidTarget:
		if e.Err != nil {
			return "the URL provided was invalid: " + e.Err.Error()
		}
		return "the URL provided was invalid"
	case RequestFailed:
		return fmt.Sprintf("the request failed with status code %d", e.StatusCode)
	case DecodingFailed:
		return "failed to decode response: " + causeString(e.Err)
	case TransportFailed:
		return "transport failed: " + causeString(e.Err)
	default:
		return "unknown error: " + causeString(e.Err)
	}
}

func causeString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind.  If target has a StatusCode,
// it must match too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusCode returns the status code of a RequestFailed error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == RequestFailed {
		return e.StatusCode
	}
	return 0
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// asKind returns err unchanged if it is already an *Error of the given kind,
// otherwise it wraps it.  Keeps errors from being wrapped twice.
func asKind(kind Kind, err error) *Error {
	var e *Error
	if errors.As(err, &e) && e.Kind == kind {
		return e
	}
	return newError(kind, err)
}
