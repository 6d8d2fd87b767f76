package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tripwise/travel-guide/docs"
	"github.com/tripwise/travel-guide/internal/api/handler"
	"github.com/tripwise/travel-guide/internal/api/middleware"
	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

// Deps is everything the HTTP layer needs. Services are built by the caller.
type Deps struct {
	Auth        ports.AuthService
	Guides      ports.GuideService
	Weather     ports.WeatherService
	Traffic     ports.TrafficService
	Booking     ports.BookingService
	Preferences ports.PreferenceService
	Sessions    ports.SessionStore

	JWTSecret string
	// Checks are the named readiness probes reported by /health/ready.
	Checks map[string]handler.Check

	// RateLimitRPS and RateLimitBurst bound guide generation per client.
	RateLimitRPS   float64
	RateLimitBurst int

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("travel"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	guideHandler := handler.NewGuideHandler(d.Guides)
	travelHandler := handler.NewTravelHandler(d.Weather, d.Traffic, d.Booking, d.Preferences)
	adminHandler := handler.NewAdminHandler(d.Auth)

	authMiddleware := middleware.Auth(d.JWTSecret, d.Sessions)
	limiter := middleware.NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst, middleware.KeyByUserOrIP())

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Guide and travel routes ---
	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/guides", guideHandler.Generate, limiter.Middleware())
	v1.GET("/guides", guideHandler.List)
	v1.POST("/guides/pitfalls", guideHandler.Pitfalls, limiter.Middleware())
	v1.GET("/guides/:id", guideHandler.Get)
	v1.POST("/guides/:id/optimize", guideHandler.Optimize, limiter.Middleware())
	v1.GET("/requests", guideHandler.Requests)
	v1.GET("/weather/:city", travelHandler.Weather)
	v1.GET("/routes", travelHandler.Route)
	v1.POST("/bookings", travelHandler.Booking)
	v1.POST("/preferences/extract", travelHandler.ExtractPreferences)

	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.Users)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks, d.Guides)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/health/store", healthDepsHandler.Store)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
