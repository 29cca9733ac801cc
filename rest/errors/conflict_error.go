package errors

import "net/http"

type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string {
	return e.msg
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

func NewConflictError(text string) error {
	return &ConflictError{text}
}
