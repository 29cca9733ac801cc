package models

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the uniform wrapper of every successful response
type Envelope struct {
	Status string `json:"status"`

	// Results is the number of records of a list response after pagination
	Results *int `json:"results,omitempty"`

	Token string `json:"token,omitempty"`

	Data interface{} `json:"data"`
}

// ErrorEnvelope is the wrapper of every failed response
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	// Error carries the full error chain, only in development
	Error string `json:"error,omitempty"`
}
