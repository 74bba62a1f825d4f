package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Op indicates which runtime operation the error occurred in
type Op string

const (
	OpMake    Op = "make"    // handle allocation
	OpDup     Op = "dup"     // handle duplication
	OpQuery   Op = "query"   // capability lookup
	OpClose   Op = "close"   // handle release
	OpSched   Op = "sched"   // scheduler primitives
	OpChannel Op = "channel" // channel operations
)

// Kind categorizes the error
type Kind string

const (
	KindBadHandle          Kind = "bad_handle"
	KindInvalidArgument    Kind = "invalid_argument"
	KindShuttingDown       Kind = "shutting_down"
	KindOutOfMemory        Kind = "out_of_memory"
	KindBlockingDisallowed Kind = "blocking_disallowed"
	KindClosedChannel      Kind = "closed_channel"
	KindDeadlock           Kind = "deadlock"
)

// Sentinel errors for errors.Is checks. Every structured *Error with a
// matching Kind compares equal to the corresponding sentinel.
var (
	ErrBadHandle          = &Error{Kind: KindBadHandle}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrShuttingDown       = &Error{Kind: KindShuttingDown}
	ErrOutOfMemory        = &Error{Kind: KindOutOfMemory}
	ErrBlockingDisallowed = &Error{Kind: KindBlockingDisallowed}
	ErrClosedChannel      = &Error{Kind: KindClosedChannel}
	ErrDeadlock           = &Error{Kind: KindDeadlock}
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Cause  error
	Op     Op
	Kind   Kind
	Handle int
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Op))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	// Handle 0 is a valid index, so bad_handle always reports it.
	if e.Handle != 0 || e.Kind == KindBadHandle {
		fmt.Fprintf(&b, " h=%d", e.Handle)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Op matches on Kind alone, which is what the package sentinels rely on.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && e.Op != t.Op {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err carries the given Kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Convenience constructors for common error patterns

// BadHandle reports an out-of-range, stale, or forged handle.
func BadHandle(op Op, h int) *Error {
	return &Error{
		Op:     op,
		Kind:   KindBadHandle,
		Handle: h,
		Detail: "handle is not in use",
	}
}

// InvalidArgument reports a malformed argument to a runtime operation.
func InvalidArgument(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// ShuttingDown reports that new resources are refused during teardown.
func ShuttingDown(op Op) *Error {
	return &Error{
		Op:     op,
		Kind:   KindShuttingDown,
		Detail: "runtime is shutting down",
	}
}

// OutOfMemory reports a failed table growth.
func OutOfMemory(op Op, want, limit int) *Error {
	return &Error{
		Op:     op,
		Kind:   KindOutOfMemory,
		Detail: fmt.Sprintf("growing to %d slots exceeds limit %d", want, limit),
	}
}

// BlockingDisallowed reports a blocking attempt inside a no-blocking fence.
func BlockingDisallowed(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindBlockingDisallowed,
		Detail: detail,
	}
}

// Deadlock reports that every strand is blocked with nothing to wake them.
func Deadlock(op Op) *Error {
	return &Error{
		Op:     op,
		Kind:   KindDeadlock,
		Detail: "all strands are blocked",
	}
}

// ClosedChannel reports an operation on a channel that has been torn down.
func ClosedChannel(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindClosedChannel,
		Detail: detail,
	}
}

// Wrap wraps an existing error with operation context
func Wrap(op Op, kind Kind, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
