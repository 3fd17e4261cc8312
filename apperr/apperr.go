// Package apperr defines the structured errors that application code returns
// across the resolution boundary. Each error carries a message, a stable
// machine-readable code and an HTTP-like status.
package apperr

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

const (
	CodeApp        = "APP_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeUnknown    = "UNKNOWN"

	// MessageInternal is the message of every unclassified failure.
	MessageInternal = "Internal Server Error"
)

// Error is a structured application error.
type Error struct {
	Message string
	Code    string
	Status  int

	cause error
}

// Option customizes an [Error] built by [New].
type Option func(*Error)

// WithCode overrides the default code.
func WithCode(code string) Option {
	return func(e *Error) { e.Code = code }
}

// WithStatus overrides the default status.
func WithStatus(status int) Option {
	return func(e *Error) { e.Status = status }
}

// WithCause attaches the underlying error. The cause gets a stack trace if it
// has none.
func WithCause(err error) Option {
	return func(e *Error) {
		if err != nil {
			e.cause = pkgerrors.WithStack(err)
		}
	}
}

// New returns an error with code [CodeApp] and status 400 unless overridden.
func New(message string, opts ...Option) *Error {
	e := &Error{Message: message, Code: CodeApp, Status: http.StatusBadRequest}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validation reports input that failed validation.
func Validation(message string, opts ...Option) *Error {
	return New(message, append([]Option{WithCode(CodeValidation), WithStatus(http.StatusUnprocessableEntity)}, opts...)...)
}

// NotFound reports a missing resource.
func NotFound(message string, opts ...Option) *Error {
	return New(message, append([]Option{WithCode(CodeNotFound), WithStatus(http.StatusNotFound)}, opts...)...)
}

// Internal is the generic failure every unrecognized error is coerced to.
func Internal() *Error {
	return &Error{Message: MessageInternal, Code: CodeUnknown, Status: http.StatusInternalServerError}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so errors.Is(err,
// apperr.Validation("")) asks "is this a validation error".
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Body returns the wire shape of e.
func (e *Error) Body() *Body {
	return &Body{Message: e.Message, Code: e.Code, Status: e.Status}
}

// Body is the serializable form of an [Error].
type Body struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Normalize returns the body of the structured error in err's chain, or the
// generic internal error body when there is none.
func Normalize(err error) *Body {
	if e, ok := As(err); ok {
		return e.Body()
	}
	return Internal().Body()
}
