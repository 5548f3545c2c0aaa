package errors

import (
	"fmt"
	"runtime"
	"time"
)

// Error carries a code, a human message, an optional cause and free-form
// context. The zero value is not useful; use the constructors.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Context   map[string]string
	Stack     []Frame
	Timestamp time.Time
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// Core constructors - code is compulsory first argument
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     captureStackTrace(),
	}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     err,
		Timestamp: time.Now(),
		Stack:     captureStackTrace(),
	}
}

func Wrapf(code Code, err error, format string, args ...interface{}) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// AddContext attaches a key/value pair and returns the error for chaining.
func (e *Error) AddContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HasCode reports whether err is an *Error carrying the given code.
func HasCode(err error, code Code) bool {
	if e, ok := err.(*Error); ok {
		return e.Code.Equals(code)
	}
	return false
}

// GetCode returns the code string of err, or "" for foreign error types.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code.String()
	}
	return ""
}

// AsError converts any error to *Error, wrapping foreign types under
// CommonInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return Wrap(CommonInternal, err, err.Error())
}

func captureStackTrace() []Frame {
	var frames []Frame
	for i := 1; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		frames = append(frames, Frame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}
	return frames
}
