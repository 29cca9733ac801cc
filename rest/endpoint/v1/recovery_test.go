package endpoint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natours/natours-api/config"
	m "github.com/natours/natours-api/rest/models"
)

func panicking(value interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(value)
	})
}

func TestRecoveryHandler(t *testing.T) {
	handler := NewRecoveryHandler(panicking("kaboom"), config.NewConfigMock().Default())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var envelope m.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, m.StatusError, envelope.Status)
	assert.Equal(t, GenericErrorMessage, envelope.Message)
}

func TestRecoveryHandler_Development(t *testing.T) {
	cfg := config.NewConfigMock()
	cfg.On("Environment").Return(config.Development)
	handler := NewRecoveryHandler(panicking("kaboom"), cfg.Default())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var envelope m.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, "unexpected failure: kaboom", envelope.Message)
}

func TestRecoveryHandler_AbortHandler(t *testing.T) {
	handler := NewRecoveryHandler(panicking(http.ErrAbortHandler), config.NewConfigMock().Default())

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))
	})
}

func TestNotFoundHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NotFoundHandler(config.NewConfigMock().Default()).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var envelope m.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, m.StatusFail, envelope.Status)
	assert.Equal(t, "Can't find /api/v1/nowhere on this server!", envelope.Message)
}
