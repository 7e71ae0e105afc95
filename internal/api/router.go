package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/skillbridge/platform/docs"
	"github.com/skillbridge/platform/internal/api/handler"
	"github.com/skillbridge/platform/internal/api/middleware"
	"github.com/skillbridge/platform/internal/core/domain"
	"github.com/skillbridge/platform/internal/core/ports"
)

// Deps carries everything the router needs. The realtime handler is injected
// rather than built here so the websocket hub's lifecycle stays owned by main.
type Deps struct {
	Log      zerolog.Logger
	Mongo    *mongo.Database
	Redis    *redis.Client
	Tokens   ports.TokenService
	Auth     ports.AuthService
	Presence ports.PresenceView
	Realtime echo.HandlerFunc
}

// NewRouter builds the Echo instance with all routes and the authorization
// rule table registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// The rule table is evaluated first match wins, so the exact public
	// paths are declared before the /api catch-alls that cover them.
	// The websocket route authenticates during its own handshake (the token
	// travels as a query parameter, not a header), hence Public here.
	table := middleware.NewRuleTable(
		middleware.Public("/health"),
		middleware.Public("/health/ready"),
		middleware.Public("/metrics"),
		middleware.Public("/swagger/**"),
		middleware.Public("/auth/login"),
		middleware.Public("/auth/refresh"),
		middleware.Public("/ws"),
		middleware.RequireRoles("/api/admin/**", domain.RoleAdmin),
		middleware.Authenticated("/api/**"),
	)
	e.Use(middleware.Gateway(deps.Tokens, table, deps.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	meHandler := handler.NewMeHandler()
	presenceHandler := handler.NewPresenceHandler(deps.Presence)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Authenticated API ---
	e.GET("/api/me", meHandler.Me)
	e.GET("/api/admin/presence/online", presenceHandler.Online)

	// --- Realtime ---
	e.GET("/ws", deps.Realtime)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
