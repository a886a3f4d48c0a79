package iamf

import (
	"errors"
	"fmt"

	"github.com/rafasloth/iamf-tools/internal/bitio"
)

// Kind classifies the failure modes surfaced at call boundaries. There are
// no exceptions in this package; every fallible function returns an error
// whose Kind can be recovered with KindOf.
type Kind int

const (
	// Unknown indicates an internal invariant violation (a bug, not user
	// error): e.g. a ParamDefinition missing its type tag after a
	// successful smart constructor.
	Unknown Kind = iota
	// InvalidArgument indicates malformed user metadata, a timing
	// gap/overlap, a param-definition/audio-element mismatch, a coercion
	// overflow, an unsupported parameter type, a recon-gain flag/value
	// mismatch, or an out-of-range Ambisonics request.
	InvalidArgument
	// ResourceExhausted indicates the bit writer's capacity was exceeded.
	ResourceExhausted
	// FailedPrecondition indicates a Generate* method was called before
	// Initialize.
	FailedPrecondition
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case ResourceExhausted:
		return "resource_exhausted"
	case FailedPrecondition:
		return "failed_precondition"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned across the package boundary.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("iamf: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("iamf: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// newErr constructs an *Error, wrapping err (which may be nil).
func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func invalidArgf(op, format string, args ...any) *Error {
	return newErr(InvalidArgument, op, fmt.Errorf(format, args...))
}

func unknownf(op, format string, args ...any) *Error {
	return newErr(Unknown, op, fmt.Errorf(format, args...))
}

func failedPrecondition(op, msg string) *Error {
	return newErr(FailedPrecondition, op, errors.New(msg))
}

// wrapBitioErr maps an internal/bitio sentinel error to the matching Kind.
func wrapBitioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, bitio.ErrResourceExhausted):
		return newErr(ResourceExhausted, op, err)
	case errors.Is(err, bitio.ErrInvalidArgument):
		return newErr(InvalidArgument, op, err)
	default:
		return newErr(Unknown, op, err)
	}
}

// KindOf returns the Kind carried by err, or Unknown if err does not carry
// one (e.g. it originated outside this package).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
