package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/form"
	"github.com/dafibh/paydesk/paydesk-client/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles login, logout and the user picker
type SessionHandler struct {
	formService *service.FormService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(formService *service.FormService) *SessionHandler {
	return &SessionHandler{formService: formService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// UsersResponse lists the users offered on the login screen
type UsersResponse struct {
	Users []string `json:"users"`
}

// ListUsers godoc
// @Summary List users
// @Description Fetch the user identifiers offered on the login screen
// @Tags session
// @Produce json
// @Success 200 {object} UsersResponse
// @Failure 502 {object} ProblemDetails
// @Router /users [get]
func (h *SessionHandler) ListUsers(c echo.Context) error {
	state, err := h.formService.Dispatch(c.Request().Context(), form.LoadUsers{})
	if err != nil {
		return handleFormError(c, err, "", "list users")
	}

	users := state.Users
	if users == nil {
		users = []string{}
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// Login godoc
// @Summary Log in
// @Description Authenticate against the backend and load outstanding bills
// @Tags session
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} form.View
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	ctx := context.WithoutCancel(c.Request().Context())
	_, err := h.formService.Dispatch(ctx, form.Login{User: req.User, Password: req.Password})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "user", Message: "User and password are required"},
			})
		}
		// The session is open even when the bills could not be loaded; they can be refreshed.
		if !errors.Is(err, domain.ErrFetchFailed) {
			return handleFormError(c, err, "", "log in")
		}
		log.Warn().Err(err).Str("user", req.User).Msg("Logged in without outstanding bills")
	}

	return c.JSON(http.StatusOK, h.formService.View())
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(c echo.Context) error {
	if _, err := h.formService.Dispatch(c.Request().Context(), form.Logout{}); err != nil {
		return handleFormError(c, err, "", "log out")
	}
	return c.JSON(http.StatusOK, h.formService.View())
}
