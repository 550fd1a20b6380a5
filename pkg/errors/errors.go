package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is the numeric code carried in a response envelope.
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Envelope codes
const (
	CodeOK           ErrorCode = 200
	CodeBadRequest   ErrorCode = 400
	CodeUnauthorized ErrorCode = 401
	CodeNotFound     ErrorCode = 404
	CodeInternal     ErrorCode = 500
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// FromEnvelope rebuilds an AppError from a failed envelope returned by a
// remote backend. A zero code is treated as 500.
func FromEnvelope(code int, message string) *AppError {
	if code == 0 {
		code = int(CodeInternal)
	}
	if message == "" {
		message = "failed"
	}
	return &AppError{Code: ErrorCode(code), Message: message}
}

// Coder is implemented by domain errors that know their envelope code.
type Coder interface {
	EnvelopeCode() int
}

// CodeOf maps err to an envelope code. Unknown errors are 500.
func CodeOf(err error) int {
	if err == nil {
		return int(CodeOK)
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return int(appErr.Code)
	}
	var coder Coder
	if stderrors.As(err, &coder) {
		return coder.EnvelopeCode()
	}
	return int(CodeInternal)
}

// MessageOf returns the human-readable message for err. Internal failures
// get a generic message so transport details are not surfaced.
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if CodeOf(err) == int(CodeInternal) {
		return "internal server error"
	}
	return err.Error()
}
