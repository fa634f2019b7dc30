package hunt

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrNameTaken = errors.New("team name taken")
	ErrIDTaken   = errors.New("team id taken")
	// ErrStrikeCount means a FAIL scan was stored but its strike number
	// could not be counted.
	ErrStrikeCount = errors.New("strike count unavailable")
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindBadRequest
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a terminal outcome of a hunt operation. Msg is safe to show to
// players; Err, when set, is the underlying cause.
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

// KindOf reports the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindInternal
}

func notFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func forbidden(msg string) error  { return &Error{Kind: KindForbidden, Msg: msg} }
func badRequest(msg string) error { return &Error{Kind: KindBadRequest, Msg: msg} }
func conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }

// internal wraps a store failure, keeping its message for operators.
func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Msg: op, Err: err}
}
