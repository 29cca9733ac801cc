package errors

import (
	"errors"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// StatusCoder is implemented by every operational error of this package
type StatusCoder interface {
	StatusCode() int
}

// StatusCode returns the status code carried by err, or false when err is not an operational error
func StatusCode(err error) (int, bool) {
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode(), true
	}
	return 0, false
}

// TranslateValidatorError takes an error from the go-playground validator (internally just a map of errors) and converts it
// into a ValidationError with a single readable message. Any other error is returned unchanged.
func TranslateValidatorError(err error, trans ut.Translator) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := validationErrors.Translate(trans)
	vals := make([]string, 0, len(errs))
	for _, fieldError := range validationErrors {
		vals = append(vals, errs[fieldError.Namespace()])
	}

	return NewValidationError("Invalid input data. " + strings.Join(vals, ". "))
}
