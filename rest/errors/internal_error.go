package errors

import "net/http"

// InternalError wraps an upstream failure. Its message is only exposed in development.
type InternalError struct {
	msg   string
	cause error
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

func (e *InternalError) StatusCode() int {
	return http.StatusInternalServerError
}

func NewInternalError(text string) error {
	return &InternalError{msg: text}
}

func WrapInternalError(text string, cause error) error {
	return &InternalError{msg: text, cause: cause}
}
