package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "github.com/natours/natours-api/rest/errors"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

func TestNewListEnvelope(t *testing.T) {
	envelope := NewListEnvelope("tours", []types.Record{{"name": "a"}, {"name": "b"}})
	require.NotNil(t, envelope.Results)
	assert.Equal(t, 2, *envelope.Results)
	assert.Equal(t, m.StatusSuccess, envelope.Status)

	body, err := json.Marshal(NewListEnvelope("tours", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","results":0,"data":{"tours":[]}}`, string(body))
}

func TestNewSingleEnvelope(t *testing.T) {
	body, err := json.Marshal(NewSingleEnvelope("tour", types.Record{"name": "The Forest Hiker"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","data":{"tour":{"name":"The Forest Hiker"}}}`, string(body))
}

func TestNewDeleteEnvelope(t *testing.T) {
	body, err := json.Marshal(NewDeleteEnvelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","data":null}`, string(body))
}

func TestNewErrorEnvelope(t *testing.T) {
	assert.Equal(t, m.StatusFail, NewErrorEnvelope(http.StatusNotFound, "missing").Status)
	assert.Equal(t, m.StatusFail, NewErrorEnvelope(http.StatusBadRequest, "bad").Status)
	assert.Equal(t, m.StatusError, NewErrorEnvelope(http.StatusInternalServerError, "boom").Status)
}

func TestRespondJSONObjectWithCode_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSONObjectWithCode(w, http.StatusNoContent, NewDeleteEnvelope())
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		development bool
		code        int
		status      string
		message     string
	}{
		{
			name:    "not found",
			err:     e.NewNotFoundError(""),
			code:    http.StatusNotFound,
			status:  m.StatusFail,
			message: "No document found with that ID",
		},
		{
			name:    "validation",
			err:     e.NewValidationError("Invalid input data. name is a required field"),
			code:    http.StatusBadRequest,
			status:  m.StatusFail,
			message: "Invalid input data. name is a required field",
		},
		{
			name:    "conflict",
			err:     e.NewConflictError("Duplicate field value. Please use another value!"),
			code:    http.StatusConflict,
			status:  m.StatusFail,
			message: "Duplicate field value. Please use another value!",
		},
		{
			name:    "wrapped operational error",
			err:     fmt.Errorf("login: %w", e.NewUnauthorizedError("Incorrect email or password")),
			code:    http.StatusUnauthorized,
			status:  m.StatusFail,
			message: "login: Incorrect email or password",
		},
		{
			name:    "unknown error in production",
			err:     errors.New("connection refused"),
			code:    http.StatusInternalServerError,
			status:  m.StatusError,
			message: GenericErrorMessage,
		},
		{
			name:    "internal error in production",
			err:     e.WrapInternalError("store failure", errors.New("connection refused")),
			code:    http.StatusInternalServerError,
			status:  m.StatusError,
			message: GenericErrorMessage,
		},
		{
			name:        "unknown error in development",
			err:         errors.New("connection refused"),
			development: true,
			code:        http.StatusInternalServerError,
			status:      m.StatusError,
			message:     "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			code := RespondWithError(w, tt.err, tt.development)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.code, w.Code)

			var envelope m.ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
			assert.Equal(t, tt.status, envelope.Status)
			assert.Equal(t, tt.message, envelope.Message)
			if tt.development {
				assert.NotEmpty(t, envelope.Error)
			} else {
				assert.Empty(t, envelope.Error)
			}
		})
	}
}
