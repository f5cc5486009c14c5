// Package errors defines the error codes shared by the scene core, the
// pipeline, the CLI and the HTTP service.
//
// Every failure a caller can act on carries a [Code]. The core reports why a
// scene or DSL document could not be transformed:
//   - DEGENERATE_SCENE: the bounding box has zero width
//   - MALFORMED_COLOR: a color string is not three equal hex runs
//   - MALFORMED_SCENE_SHAPE: a document does not fit the scene schema
//   - EXAMPLE_COUNT: a training frame does not hold exactly two examples
//
// The service adds input, session, generation and configuration codes.
// Codes survive wrapping, so a handler several layers up can still tell a
// bad color from an expired session:
//
//	err := errors.Wrap(errors.ErrCodeMalformedSceneShape, yamlErr, "parse DSL")
//	if errors.Is(err, errors.ErrCodeMalformedSceneShape, errors.ErrCodeMalformedColor) {
//	    // reject the document
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Scene conversion
	ErrCodeDegenerateScene     Code = "DEGENERATE_SCENE"
	ErrCodeMalformedColor      Code = "MALFORMED_COLOR"
	ErrCodeMalformedSceneShape Code = "MALFORMED_SCENE_SHAPE"
	ErrCodeExampleCount        Code = "EXAMPLE_COUNT"

	// Input validation
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Sessions
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired  Code = "SESSION_EXPIRED"

	// Text generation
	ErrCodeGenerationFailed Code = "GENERATION_FAILED"
	ErrCodeRateLimited      Code = "RATE_LIMITED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Scene reports whether c describes a scene or DSL document that could not be
// converted, as opposed to a request, session or backend failure.
func (c Code) Scene() bool {
	switch c {
	case ErrCodeDegenerateScene, ErrCodeMalformedColor, ErrCodeMalformedSceneShape, ErrCodeExampleCount:
		return true
	}
	return false
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the code of err is one of codes. Only the outermost
// coded error counts: a GENERATION_FAILED wrapping a MALFORMED_COLOR is a
// generation failure.
func Is(err error, codes ...Code) bool {
	got := GetCode(err)
	if got == "" {
		return false
	}
	for _, c := range codes {
		if got == c {
			return true
		}
	}
	return false
}

// GetCode returns the code of the outermost *Error or *RateLimitedError in
// the chain of err, or "" when there is none.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case *RateLimitedError:
			return e.Code()
		}
	}
	return ""
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// UserMessage returns the message of err without its code prefix or causes,
// fit to show to the person who made the request.
func UserMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e := e.(type) {
		case *Error:
			return e.Message
		case *RateLimitedError:
			return e.Error()
		}
	}
	return err.Error()
}

// RateLimitedError is returned when the text model answered with HTTP 429.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 when the backend did not say
	Message    string
}

func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// Code returns ErrCodeRateLimited.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
