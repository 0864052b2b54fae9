// errors.go - Error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// APIError is an error rendered to the client as a plain-text body. Cause is
// logged but never sent.
type APIError struct {
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewTooLargeError creates a 413 error
func NewTooLargeError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Message: msgFileTooLarge,
		Cause:   cause,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: message,
		Cause:   cause,
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler that writes plain-text
// bodies and logs server-side causes.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(logger)
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(err error, c echo.Context) {
		req := c.Request()
		apiErr := toAPIError(err)

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", apiErr.Status),
		}
		if apiErr.Cause != nil {
			fields = append(fields, zap.Error(apiErr.Cause))
		}

		if c.Response().Committed {
			// already rendered, or failed mid-stream after the headers went out
			logger.Debug("error after response was committed", append(fields, zap.Error(err))...)
			return
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error(apiErr.Message, fields...)
		} else if apiErr.Cause != nil {
			logger.Warn(apiErr.Message, fields...)
		}

		if req.Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.String(apiErr.Status, apiErr.Message)
		}
		if err != nil {
			logger.Error("writing error response", zap.Error(err))
		}
	}
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code == http.StatusRequestEntityTooLarge {
			return NewTooLargeError(err)
		}
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return &APIError{Status: httpErr.Code, Message: msg, Cause: httpErr.Internal}
	}

	return NewInternalError(http.StatusText(http.StatusInternalServerError), err)
}
