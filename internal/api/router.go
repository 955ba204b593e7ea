package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/api/handler"
	"github.com/repairdesk/dashboard-state/internal/api/middleware"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// RouterDeps are the collaborators the dev API is built from.
type RouterDeps struct {
	Accounts *accounts.Service
	// Readiness probes, keyed by dependency name.
	Health map[string]handler.Pinger
	Log    zerolog.Logger
	// AccessLog enables echo's request logger.
	AccessLog bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if deps.AccessLog {
		e.Use(echomiddleware.Logger())
	}
	e.Use(middleware.Metrics())

	authHandler := handler.NewAuthHandler(deps.Accounts)
	authMiddleware := middleware.Auth(deps.Accounts)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/profile", authHandler.Profile, authMiddleware)

	users := e.Group("/auth/users", authMiddleware)
	users.GET("", authHandler.ListUsers, middleware.RBAC(domain.RoleAdmin, domain.RoleDirector))
	users.POST("", authHandler.CreateUser, middleware.RBAC(domain.RoleAdmin))

	// --- Probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
