package errors

import "net/http"

// ValidationError is returned when a record fails its kind's rules
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

func NewValidationError(text string) error {
	return &ValidationError{text}
}

// BadRequestError covers malformed input such as invalid identifiers or JSON
type BadRequestError struct {
	msg string
}

func (e *BadRequestError) Error() string {
	return e.msg
}

func (e *BadRequestError) StatusCode() int {
	return http.StatusBadRequest
}

func NewBadRequestError(text string) error {
	return &BadRequestError{text}
}

type UnauthorizedError struct {
	msg string
}

func (e *UnauthorizedError) Error() string {
	return e.msg
}

func (e *UnauthorizedError) StatusCode() int {
	return http.StatusUnauthorized
}

func NewUnauthorizedError(text string) error {
	return &UnauthorizedError{text}
}

type ForbiddenError struct {
	msg string
}

func (e *ForbiddenError) Error() string {
	return e.msg
}

func (e *ForbiddenError) StatusCode() int {
	return http.StatusForbidden
}

func NewForbiddenError(text string) error {
	return &ForbiddenError{text}
}
