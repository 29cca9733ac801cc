package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

const Prefix = "/api/v1"

// BearerHeader returns the header authenticating a request with token
func BearerHeader(token string) http.Header {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}

func ExecuteGet(t *testing.T, handler http.Handler, target string, responsePtr interface{}, header http.Header) int {
	return execute(t, http.MethodGet, handler, target, "", responsePtr, header)
}

func ExecutePost(
	t *testing.T,
	handler http.Handler,
	target string,
	requestBody string,
	responsePtr interface{},
	header http.Header,
) int {
	return execute(t, http.MethodPost, handler, target, requestBody, responsePtr, header)
}

func ExecutePatch(
	t *testing.T,
	handler http.Handler,
	target string,
	requestBody string,
	responsePtr interface{},
	header http.Header,
) int {
	return execute(t, http.MethodPatch, handler, target, requestBody, responsePtr, header)
}

func ExecuteDelete(t *testing.T, handler http.Handler, target string, responsePtr interface{}, header http.Header) int {
	return execute(t, http.MethodDelete, handler, target, "", responsePtr, header)
}

func execute(
	t *testing.T,
	method string,
	handler http.Handler,
	target string,
	requestBody string,
	responsePtr interface{},
	header http.Header,
) int {
	rv := reflect.ValueOf(responsePtr)
	if responsePtr != nil && rv.Kind() != reflect.Ptr {
		panic("Provided value should be a pointer or nil")
	}

	var body io.Reader
	if requestBody != "" {
		body = bytes.NewBufferString(requestBody)
	}

	r := httptest.NewRequest(method, Prefix+target, body)
	for key, values := range header {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code == http.StatusNoContent {
		require.Empty(t, w.Body.String(), "no content responses must not have a body")
		return w.Code
	}

	if responsePtr != nil {
		bodyString := w.Body.String()
		err := json.NewDecoder(bytes.NewBufferString(bodyString)).Decode(responsePtr)
		require.NoError(t, err, fmt.Sprintf("Error decoding response with code %d and body: %s", w.Code, bodyString))
	}

	return w.Code
}
