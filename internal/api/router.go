package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/onduty/roster/docs"
	"github.com/onduty/roster/internal/api/handler"
	"github.com/onduty/roster/internal/api/middleware"
	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
	"github.com/onduty/roster/internal/infrastructure/http/handlers"
)

// AuthService is what the router needs from identity: the use cases plus
// token verification for the Auth middleware.
type AuthService interface {
	ports.AuthService
	middleware.Authenticator
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Auth     AuthService
	Requests ports.RequestService
	Checks   map[string]handlers.Check
	Log      zerolog.Logger
	// Registry receives the HTTP metrics; nil uses the Prometheus default.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "roster_http",
		Registerer: registerer(deps.Registry),
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Auth)
	requestHandler := handler.NewRequestHandler(deps.Requests)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)
	requireAuth := middleware.Auth(deps.Auth)

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	api.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.DELETE("/me", authHandler.DeleteMe, requireAuth)

	// --- Users ---
	users := api.Group("/users", requireAuth)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleManager, domain.RoleAdmin))
	users.POST("", userHandler.Create, middleware.RBAC(domain.RoleAdmin))
	users.GET("/:id", userHandler.Get)
	users.DELETE("/:id", userHandler.Delete)

	// --- Duty requests ---
	reqs := api.Group("/requests", requireAuth)
	reqs.POST("", requestHandler.Create)
	reqs.GET("", requestHandler.List)
	reqs.GET("/:id", requestHandler.Get)
	reqs.DELETE("/:id", requestHandler.Delete)
	reqs.GET("/:id/actions", requestHandler.Actions)
	reqs.GET("/:id/history", requestHandler.History)
	reqs.POST("/:id/accept", requestHandler.Accept)
	reqs.POST("/:id/reject", requestHandler.Reject)
	reqs.POST("/:id/revoke", requestHandler.Revoke)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}

func gatherer(reg *prometheus.Registry) prometheus.Gatherer {
	if reg == nil {
		return prometheus.DefaultGatherer
	}
	return reg
}
