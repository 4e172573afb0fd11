package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/backend"
	"github.com/dafibh/paydesk/paydesk-client/internal/config"
	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/handler"
	"github.com/dafibh/paydesk/paydesk-client/internal/middleware"
	"github.com/dafibh/paydesk/paydesk-client/internal/repository/memory"
	"github.com/dafibh/paydesk/paydesk-client/internal/repository/sqlite"
	"github.com/dafibh/paydesk/paydesk-client/internal/service"
	"github.com/dafibh/paydesk/paydesk-client/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open session store
	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("Failed to open session store")
	}
	defer closeStore()
	log.Info().Str("store", cfg.SessionStore).Msg("Session store ready")

	// Initialize backend client and form service
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	formService := service.NewFormService(backendClient, store)

	hub := websocket.NewHub()
	formService.SetEventPublisher(hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resume a session left by a previous run
	if err := formService.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not restore previous session")
	}

	// Keep cached bills fresh while someone is logged in
	if cfg.RefreshInterval > 0 {
		worker := service.NewRefreshWorker(formService, log.Logger, cfg.RefreshInterval)
		worker.Start(ctx)
		defer worker.Stop()
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst)
	defer loginLimiter.Stop()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(formService)
	formHandler := handler.NewFormHandler(formService)
	wsHandler := handler.NewWebSocketHandler(hub, formService, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware(formService))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, formService, loginLimiter, sessionHandler, formHandler, wsHandler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr()).Str("backend", cfg.BackendURL).Msg("Starting server")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}

	log.Info().Msg("Server exited")
}

// openSessionStore returns the configured store and a function releasing it
func openSessionStore(cfg *config.Config) (domain.SessionStore, func(), error) {
	if cfg.SessionStore == config.SessionStoreMemory {
		return memory.NewSessionRepository(), func() {}, nil
	}

	repo, err := sqlite.NewSessionRepository(cfg.SessionDBPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close session store")
		}
	}, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware(sessions middleware.SessionProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			user, _ := sessions.CurrentUser()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("user", user).
				Msg("request")

			return nil
		}
	}
}
