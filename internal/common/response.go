package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload under the "error" key of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type dataEnvelope struct {
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

var encodeFailure = []byte(`{"error":{"code":"INTERNAL","message":"response encoding failed"}}`)

// JSON marshals v before touching the response so a value that cannot be
// encoded turns into a 500 instead of a truncated body.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status, body = http.StatusInternalServerError, encodeFailure
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// Data writes v under the "data" key.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, dataEnvelope{Data: v})
}

// Page writes one page of rows with its pagination block.
func Page(w http.ResponseWriter, rows any, p Pagination) {
	JSON(w, http.StatusOK, dataEnvelope{Data: rows, Pagination: &p})
}

// JSONError writes the error envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}})
}
