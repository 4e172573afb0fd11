package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dafibh/paydesk/paydesk-client/internal/form"
	"github.com/dafibh/paydesk/paydesk-client/internal/middleware"
	"github.com/dafibh/paydesk/paydesk-client/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// FormHandler handles edits of the allocation form
type FormHandler struct {
	formService *service.FormService
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(formService *service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// FieldValueRequest carries the new value of a single field
type FieldValueRequest struct {
	Value string `json:"value"`
}

// GetForm handles GET /api/v1/form
func (h *FormHandler) GetForm(c echo.Context) error {
	return c.JSON(http.StatusOK, h.formService.View())
}

// SetHeaderField handles PUT /api/v1/form/header/:field
func (h *FormHandler) SetHeaderField(c echo.Context) error {
	field := c.Param("field")

	var req FieldValueRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	return h.dispatch(c, form.SetHeaderField{Field: field, Value: req.Value}, field, "update header")
}

// AddRow handles POST /api/v1/form/rows
func (h *FormHandler) AddRow(c echo.Context) error {
	return h.dispatch(c, form.AddRow{}, "", "add row")
}

// UpdateRow handles PUT /api/v1/form/rows/:index/:field
func (h *FormHandler) UpdateRow(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return NewValidationError(c, "Invalid row index", []ValidationError{
			{Field: "index", Message: "Must be a non-negative integer"},
		})
	}
	field := c.Param("field")

	var req FieldValueRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	return h.dispatch(c, form.UpdateRow{Index: index, Field: field, Value: req.Value}, field, "update row")
}

// Proceed handles POST /api/v1/form/proceed
func (h *FormHandler) Proceed(c echo.Context) error {
	return h.dispatch(c, form.AdvanceToAllocation{}, "", "proceed to allocation")
}

// Back handles POST /api/v1/form/back
func (h *FormHandler) Back(c echo.Context) error {
	return h.dispatch(c, form.Back{}, "", "return to header")
}

// Submit godoc
// @Summary Submit allocation
// @Description Validate the allocation rows against the declared total and post them to the backend
// @Tags form
// @Produce json
// @Success 200 {object} form.View
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /form/submit [post]
func (h *FormHandler) Submit(c echo.Context) error {
	user := middleware.GetUser(c)

	// A dropped client connection must not abort a submission already sent
	ctx := context.WithoutCancel(c.Request().Context())
	if _, err := h.formService.Dispatch(ctx, form.Submit{}); err != nil {
		return handleFormError(c, err, "", "submit payment")
	}

	log.Info().Str("user", user).Msg("Payment submitted")
	return c.JSON(http.StatusOK, h.formService.View())
}

// RefreshOutstanding handles POST /api/v1/outstanding/refresh
func (h *FormHandler) RefreshOutstanding(c echo.Context) error {
	return h.dispatch(c, form.RefreshOutstanding{}, "", "refresh outstanding bills")
}

func (h *FormHandler) dispatch(c echo.Context, ev form.Event, field, action string) error {
	if _, err := h.formService.Dispatch(c.Request().Context(), ev); err != nil {
		return handleFormError(c, err, field, action)
	}
	return c.JSON(http.StatusOK, h.formService.View())
}
