package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"quotedesk/services"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrQuotationSaved):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Internal failures are logged and
// answered with a generic message.
func respondError(e *core.RequestEvent, logger *zap.Logger, op string, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.String("path", e.Request.URL.Path), zap.Error(err))
		msg = "Something went wrong. Please try again."
	}
	return e.JSON(status, errorBody{Error: msg})
}

// badRequest answers a malformed request.
func badRequest(e *core.RequestEvent, msg string) error {
	return e.JSON(http.StatusBadRequest, errorBody{Error: msg})
}
