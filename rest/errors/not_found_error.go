package errors

import "net/http"

// DefaultNotFoundMessage is reported when a lookup by identifier yields no record
const DefaultNotFoundMessage = "No document found with that ID"

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

func NewNotFoundError(text string) error {
	if text == "" {
		text = DefaultNotFoundMessage
	}
	return &NotFoundError{text}
}
