package api

import (
	"encoding/json"
	"errors"
	"strings"
)

// GenericMessage is shown when the API gives no usable error text
const GenericMessage = "Request failed"

// maxRawMessage bounds how many characters of an unstructured error body are shown
const maxRawMessage = 200

// Error is the single error value every API failure is normalized into:
// network failures (Status 0), non-2xx responses with a {message} body, and
// non-2xx responses with an empty or unstructured body.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message extracts the human-readable text of err.
// API errors keep their server message; anything else falls back.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// errorFromBody builds an Error from a non-2xx response
func errorFromBody(status int, body []byte) *Error {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return &Error{Status: status, Message: GenericMessage}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// Not JSON: show the raw text
		if runes := []rune(text); len(runes) > maxRawMessage {
			text = string(runes[:maxRawMessage])
		}
		return &Error{Status: status, Message: text}
	}
	if payload.Message == "" {
		return &Error{Status: status, Message: GenericMessage}
	}
	return &Error{Status: status, Message: payload.Message}
}
