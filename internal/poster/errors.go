package poster

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-success answer from a remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// graphError is the error envelope of the Graph API.
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// newAPIError builds an APIError from a response body, preferring the
// message of a Graph API error envelope.
func newAPIError(status int, body []byte) *APIError {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return &APIError{StatusCode: status, Message: ge.Error.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "empty response"
	}
	return &APIError{StatusCode: status, Message: msg}
}
