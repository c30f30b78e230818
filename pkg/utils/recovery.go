package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverAsError recovers from a panic and converts it to an error.
// It should be called with defer at the beginning of a function.
// The errPtr should be a pointer to the error return value.
//
// Example:
//
//	func doWork() (err error) {
//	    defer RecoverAsError(&err)
//	    // ... code that might panic
//	}
func RecoverAsError(errPtr *error) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		*errPtr = &PanicError{
			Value:      r,
			StackTrace: stack,
		}
		slog.Error("Recovered from panic", "panic", r, "stack", stack)
	}
}

// CallSafely runs fn and turns a panic into a *PanicError. Model bindings that
// cross into native code can panic on malformed input; callers treat that as
// an ordinary failure.
func CallSafely[T any](fn func() (T, error)) (result T, err error) {
	defer RecoverAsError(&err)
	return fn()
}

// SafeGo runs a function in a goroutine with panic recovery.
// Any panic is logged and passed to the optional error handler.
func SafeGo(fn func(), onError func(error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				slog.Error("Recovered from panic in goroutine", "panic", r, "stack", stack)
				if onError != nil {
					onError(&PanicError{Value: r, StackTrace: stack})
				}
			}
		}()
		fn()
	}()
}
