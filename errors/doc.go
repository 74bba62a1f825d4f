// Package errors provides structured error types for the strand runtime.
//
// Errors are categorized by Op (which runtime operation failed) and Kind
// (error category). The Error type carries the offending handle and a
// cause chain.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.BadHandle(errors.OpQuery, h)
//	err := errors.ShuttingDown(errors.OpMake)
//
// All errors implement the standard error interface and support
// errors.Is/As. The package sentinels match on Kind alone, so callers
// can test outcomes without knowing the originating operation:
//
//	if errors.Is(err, errors.ErrBadHandle) { ... }
package errors
