package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/handlers"
	"github.com/nfrund/folio/internal/middleware"
)

const (
	msgRouteNotFound = "Route not found"
	msgInternalError = "Something went wrong!"
)

// setupErrorHandling installs the central HTTP error handler. Every handler
// returns errors and this renders them as {"message": ...}.
func setupErrorHandling(e *echo.Echo, maxUploadBytes int64) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg, handled := resolveError(err, maxUploadBytes)
		logger := middleware.FromContext(c.Request().Context())

		switch {
		case !handled:
			logger.Error("Internal Server Error (Unhandled)",
				"event", "unhandled_error",
				"path", c.Request().URL.Path,
				"error", err.Error(),
				"stack_trace", string(debug.Stack()))
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed",
				"event", "request_failed",
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		default:
			logger.Debug("Request rejected",
				"event", "request_rejected",
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, handlers.ErrorResponse{Message: msg})
		}
		if writeErr != nil {
			logger.Error("Failed to write error response", "event", "error_response_failed", "error", writeErr)
		}
	}
}

// resolveError maps err to a status and client message. handled is false for
// errors nothing classified.
func resolveError(err error, maxUploadBytes int64) (status int, msg string, handled bool) {
	var de *domain.Error
	if errors.As(err, &de) {
		return kindStatus(de.Kind), de.Message, true
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, msgRouteNotFound, true
		case http.StatusRequestEntityTooLarge:
			return http.StatusBadRequest, handlers.FileTooLarge(maxUploadBytes).Message, true
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m, true
		}
		return he.Code, fmt.Sprint(he.Message), true
	}

	return http.StatusInternalServerError, msgInternalError, false
}

func kindStatus(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindInvalidCredentials, domain.KindAlreadyExists:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
