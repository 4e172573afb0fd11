package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://paydesk.app/errors/validation"
	ErrorTypeUnauthorized = "https://paydesk.app/errors/unauthorized"
	ErrorTypeConflict     = "https://paydesk.app/errors/conflict"
	ErrorTypeBadGateway   = "https://paydesk.app/errors/backend"
	ErrorTypeInternal     = "https://paydesk.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBadGatewayError creates an error response for a failed backend call
func NewBadGatewayError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeBadGateway,
		Title:    "Backend Error",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// errorFields names the input a validation error is about when the request did not
var errorFields = []struct {
	err   error
	field string
}{
	{domain.ErrPartyRequired, domain.HeaderFieldParty},
	{domain.ErrPaymentDateOutOfWindow, domain.HeaderFieldPaymentDate},
	{domain.ErrInvalidDate, domain.HeaderFieldPaymentDate},
	{domain.ErrInvalidPaymentType, domain.HeaderFieldPaymentType},
	{domain.ErrBillNotOutstanding, domain.RowFieldBillID},
	{domain.ErrInvalidAmount, domain.RowFieldAmount},
	{domain.ErrTotalNotReconciled, "rows"},
	{domain.ErrNoAllocationRows, "rows"},
	{domain.ErrIncompleteRow, "rows"},
	{domain.ErrRowIndexOutOfRange, "index"},
}

func fieldOf(err error, field string) string {
	if field != "" {
		return field
	}
	for _, ef := range errorFields {
		if errors.Is(err, ef.err) {
			return ef.field
		}
	}
	return ""
}

// handleFormError maps a form or backend error to a problem details response.
// field names the input being edited, if any.
func handleFormError(c echo.Context, err error, field, action string) error {
	switch {
	case service.IsValidationError(err):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: fieldOf(err, field), Message: err.Error()},
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorizedError(c, "Invalid credentials")
	case errors.Is(err, domain.ErrNotAuthenticated):
		return NewUnauthorizedError(c, "Log in before using the form")
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return NewConflictError(c, "A submission is already in progress")
	case errors.Is(err, domain.ErrInvalidTransition):
		return NewConflictError(c, "Action not allowed at this stage of the form")
	case errors.Is(err, domain.ErrSubmissionFailed),
		errors.Is(err, domain.ErrFetchFailed),
		errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrBackendRejected):
		log.Warn().Err(err).Str("action", action).Msg("Backend call failed")
		return NewBadGatewayError(c, err.Error())
	}
	log.Error().Err(err).Str("action", action).Msg("Unexpected form error")
	return NewInternalError(c, "Failed to "+action)
}
