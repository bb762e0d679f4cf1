// Package errs defines structured error types for the epicycle library,
// allowing for a clear distinction between error classes (overflow,
// invalid argument, failed task) and for carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types implement the Unwrap() method where they carry a cause, so
// that errors.Is() and errors.As() work across the library boundary.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two recoverable failure classes of the pure
// algebraic layer. Typed errors produced by this package wrap one of these,
// so callers can classify failures with errors.Is without depending on the
// concrete type.
var (
	// ErrOverflow indicates an integer computation (code encoding, component
	// arithmetic, accumulated degree) would exceed the representable range.
	ErrOverflow = errors.New("integer overflow")

	// ErrInvalidArgument indicates malformed input: wrong vector length, an
	// unrelated or shrinking symbol set in a merge, a zero thread count,
	// mismatched slice lengths, an out-of-range worker index.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OverflowError reports that an arithmetic step would exceed the range of the
// machine integer type used for Kronecker codes and multipliers.
type OverflowError struct {
	// Op names the operation that overflowed (e.g. "encode", "multiplier addition").
	Op string
}

// Error returns the error message for an OverflowError.
func (e OverflowError) Error() string {
	return fmt.Sprintf("overflow in %s", e.Op)
}

// Unwrap links the error to ErrOverflow for errors.Is classification.
func (e OverflowError) Unwrap() error { return ErrOverflow }

// NewOverflow creates a new OverflowError for the named operation.
func NewOverflow(op string) error {
	return OverflowError{Op: op}
}

// InvalidArgumentError represents a malformed input to one of the library's
// operations. It indicates the caller cannot proceed without correcting the
// input; the callee's state is never partially mutated.
type InvalidArgumentError struct {
	// Message explains the specific argument error.
	Message string
}

// Error returns the error message for an InvalidArgumentError.
func (e InvalidArgumentError) Error() string { return e.Message }

// Unwrap links the error to ErrInvalidArgument for errors.Is classification.
func (e InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// NewInvalidArgument creates a new InvalidArgumentError with a formatted
// message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new InvalidArgumentError containing the formatted message.
func NewInvalidArgument(format string, a ...any) error {
	return InvalidArgumentError{Message: fmt.Sprintf(format, a...)}
}

// TaskError encapsulates a failure captured from a worker or spawned
// goroutine while preserving the original cause. A recovered panic is
// carried as the Panic value with a nil Cause.
type TaskError struct {
	// Cause is the underlying error returned by the task, if any.
	Cause error
	// Panic is the value recovered from a panicking task, if any.
	Panic any
}

// Error returns the error message from the underlying cause or panic value.
func (e TaskError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("task failed: %v", e.Cause)
	}
	return fmt.Sprintf("task panicked: %v", e.Panic)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As). It returns nil for a
// captured panic.
func (e TaskError) Unwrap() error { return e.Cause }

// WrapTask wraps a task's error into a TaskError. A nil error is passed
// through unchanged so call sites can wrap unconditionally.
func WrapTask(err error) error {
	if err == nil {
		return nil
	}
	return TaskError{Cause: err}
}

// WrapPanic converts a recovered panic value into a TaskError. If the
// recovered value is itself an error it is preserved as the cause.
func WrapPanic(v any) error {
	if err, ok := v.(error); ok {
		return TaskError{Cause: err, Panic: v}
	}
	return TaskError{Panic: v}
}
