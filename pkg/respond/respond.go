// Package respond renders the uniform API result envelope.
//
// Every endpoint answers with {statusCode, message, data, error}; error is
// null on success and {code, message} on failure. Expected business outcomes
// (not found, already a member) are rendered through here with a 4xx status
// rather than routed through the error handler.
package respond

import (
	"github.com/labstack/echo/v4"
)

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the uniform response shape shared by all endpoints.
type Envelope struct {
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Data       any        `json:"data"`
	Error      *ErrorBody `json:"error"`
}

// JSON writes a success envelope with the given status, message and payload.
// Failures are rendered by the apperror HTTP error handler, not here.
func JSON(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}
