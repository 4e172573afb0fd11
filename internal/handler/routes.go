package handler

import (
	"github.com/dafibh/paydesk/paydesk-client/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, sessions middleware.SessionProvider, loginLimiter *middleware.RateLimiter, sessionHandler *SessionHandler, formHandler *FormHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// User picker (public)
	api.GET("/users", sessionHandler.ListUsers)

	// Session routes (public, login rate limited per client IP)
	session := api.Group("/session")
	session.POST("/login", sessionHandler.Login, middleware.RateLimitMiddleware(loginLimiter))
	session.POST("/logout", sessionHandler.Logout)

	// Form routes (protected)
	forms := api.Group("/form")
	forms.Use(middleware.RequireSession(sessions))
	forms.GET("", formHandler.GetForm)
	forms.PUT("/header/:field", formHandler.SetHeaderField)
	forms.POST("/rows", formHandler.AddRow)
	forms.PUT("/rows/:index/:field", formHandler.UpdateRow)
	forms.POST("/proceed", formHandler.Proceed)
	forms.POST("/back", formHandler.Back)
	forms.POST("/submit", formHandler.Submit)

	// Outstanding bill routes (protected)
	outstanding := api.Group("/outstanding")
	outstanding.Use(middleware.RequireSession(sessions))
	outstanding.POST("/refresh", formHandler.RefreshOutstanding)

	// WebSocket event stream
	e.GET("/ws", wsHandler.HandleWS)
}
