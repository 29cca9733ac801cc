package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"

	e "github.com/natours/natours-api/rest/errors"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

// GenericErrorMessage replaces the message of unexpected failures outside development
const GenericErrorMessage = "Something went very wrong!"

// NewSingleEnvelope wraps one record under its kind key
func NewSingleEnvelope(key string, record types.Record) m.Envelope {
	return m.Envelope{
		Status: m.StatusSuccess,
		Data:   map[string]interface{}{key: record},
	}
}

// NewListEnvelope wraps records under the plural kind key. Results counts the records of this page,
// not every matching record.
func NewListEnvelope(key string, records []types.Record) m.Envelope {
	if records == nil {
		records = []types.Record{}
	}
	results := len(records)
	return m.Envelope{
		Status:  m.StatusSuccess,
		Results: &results,
		Data:    map[string]interface{}{key: records},
	}
}

func NewDeleteEnvelope() m.Envelope {
	return m.Envelope{Status: m.StatusSuccess}
}

// NewErrorEnvelope builds the failure wrapper, "fail" for client errors and "error" otherwise
func NewErrorEnvelope(code int, message string) m.ErrorEnvelope {
	status := m.StatusError
	if code >= 400 && code < 500 {
		status = m.StatusFail
	}
	return m.ErrorEnvelope{Status: status, Message: message}
}

// RespondJSONObjectWithCode writes the object and status header to the response. Nothing is written
// after the header of a 204 response.
func RespondJSONObjectWithCode(w http.ResponseWriter, code int, obj interface{}) {
	setCommonHeaders(w)
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	jsonBytes, err := json.Marshal(obj)
	if err != nil {
		code = http.StatusInternalServerError
		jsonBytes, _ = json.Marshal(NewErrorEnvelope(code, "unable to marshal response"))
	}
	w.WriteHeader(code)
	_, _ = w.Write(jsonBytes)
}

// RespondWithError is the single boundary between failures and the wire. Client errors keep their
// status and message. Anything else is a server error whose message is only exposed in development.
// It returns the status code written.
func RespondWithError(w http.ResponseWriter, err error, development bool) int {
	code, ok := e.StatusCode(err)
	message := err.Error()
	if !ok {
		code = http.StatusInternalServerError
	}
	if code >= http.StatusInternalServerError && !development {
		message = GenericErrorMessage
	}

	envelope := NewErrorEnvelope(code, message)
	if development {
		envelope.Error = fmt.Sprintf("%+v", err)
	}
	RespondJSONObjectWithCode(w, code, envelope)
	return code
}

func setCommonHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
}
