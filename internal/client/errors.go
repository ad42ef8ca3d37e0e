package client

import (
	"encoding/json"
	"fmt"
	"io"
)

// APIError is a non-2xx response from the backend with its error message
// extracted, so callers can show the backend's own wording.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status code %d", e.StatusCode)
}

// decodeAPIError reads an error body of the form {"error": "..."} or
// {"detail": "..."} and wraps it into an APIError.
func decodeAPIError(statusCode int, body io.Reader) *APIError {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	// A malformed error body still yields a usable APIError.
	_ = json.NewDecoder(body).Decode(&payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Detail
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
