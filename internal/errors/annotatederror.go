package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
	// cause is the wrapped error if any.
	cause error
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, attrs)
}

// Wrap annotates err with a message, the caller's source location and attributes.
//
// Returns nil if err is nil so that it can be used on the return path unconditionally.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return newAnnotated(msg, err, attrs)
}

func newAnnotated(msg string, cause error, attrs []slog.Attr) AnnotatedError {
	var pcs [1]uintptr
	// Skip runtime.Callers, this function and the exported constructor.
	runtime.Callers(3, pcs[:])
	return AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
		cause: cause,
	}
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be detected
// with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Error implements error interface.
func (err AnnotatedError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.cause.Error())
}

// Unwrap returns the wrapped error.
func (err AnnotatedError) Unwrap() error {
	return err.cause
}

func (err AnnotatedError) source() string {
	frames := runtime.CallersFrames([]uintptr{err.pc})
	source, _ := frames.Next()
	return fmt.Sprintf("%s:%d", source.File, source.Line)
}

// LogValue formats the error for useful logging.
func (err AnnotatedError) LogValue() slog.Value {
	// Retrieve the source location of the error so that developers can locate it faster.
	attrs := append(
		[]slog.Attr{slog.String("source", err.source())},
		err.attrs...,
	)

	return slog.GroupValue(attrs...)
}

// SlogError renders err as a single slog attribute containing the message and the attributes and source locations
// collected from every AnnotatedError in the chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	attrs := []slog.Attr{slog.String("msg", err.Error())}
	var sources []string
	for current := err; current != nil; current = errors.Unwrap(current) {
		var annotated AnnotatedError
		if ok := errors.As(current, &annotated); !ok {
			break
		}
		sources = append(sources, annotated.source())
		attrs = append(attrs, annotated.attrs...)
		current = annotated
	}
	if len(sources) > 0 {
		attrs = append(attrs, slog.Any("sources", sources))
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
