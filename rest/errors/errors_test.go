package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
		ok   bool
	}{
		{NewNotFoundError(""), http.StatusNotFound, true},
		{NewValidationError("bad"), http.StatusBadRequest, true},
		{NewBadRequestError("bad"), http.StatusBadRequest, true},
		{NewUnauthorizedError("who"), http.StatusUnauthorized, true},
		{NewForbiddenError("no"), http.StatusForbidden, true},
		{NewConflictError("dup"), http.StatusConflict, true},
		{NewInternalError("boom"), http.StatusInternalServerError, true},
		{fmt.Errorf("wrapped: %w", NewForbiddenError("no")), http.StatusForbidden, true},
		{errors.New("plain"), 0, false},
	}

	for _, tt := range tests {
		code, ok := StatusCode(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.ok, ok, tt.err.Error())
	}
}

func TestNotFoundDefaultMessage(t *testing.T) {
	assert.Equal(t, DefaultNotFoundMessage, NewNotFoundError("").Error())
	assert.Equal(t, "Can't find /x on this server!", NewNotFoundError("Can't find /x on this server!").Error())
}

func TestWrapInternalError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapInternalError("store failure", cause)
	assert.Equal(t, "store failure: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestTranslateValidatorError(t *testing.T) {
	validate := validator.New()
	uni := ut.New(en.New(), en.New())
	trans, _ := uni.GetTranslator("en")
	require.NoError(t, enTranslations.RegisterDefaultTranslations(validate, trans))

	type payload struct {
		Name   string  `validate:"required"`
		Rating float64 `validate:"max=5"`
	}
	err := TranslateValidatorError(validate.Struct(payload{Rating: 6}), trans)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "Invalid input data. Name is a required field. Rating must be 5 or less", err.Error())

	plain := errors.New("not a validation error")
	assert.Equal(t, plain, TranslateValidatorError(plain, trans))
}
