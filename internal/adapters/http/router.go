package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-quote/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-quote/internal/adapters/http/middleware"
	"github.com/jsamuelsen/daily-quote/internal/platform/telemetry"
)

// RouterConfig is what SetupRouter mounts. A nil handler mounts nothing.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	Health *handlers.HealthHandler
	Quotes *handlers.QuoteHandler

	// RequestTimeout is the deadline for /api requests. Zero means none.
	RequestTimeout time.Duration
}

// SetupRouter mounts the middleware chain and routes on engine.
//
// Every request passes through, in order: panic recovery, request and
// correlation IDs, tracing and metrics, then the access log. Only /api
// requests carry a deadline; probes under /-/ are neither traced nor logged.
//
//	POST /api/quote                      date body, optional acrossYears
//	GET  /api/v1/quotes/:date            one quote
//	GET  /api/v1/quotes/:date/years      the date in every configured year
//	GET  /-/live /-/ready /-/build /-/metrics
//
// Unknown routes answer with the JSON error envelope.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	engine.NoRoute(routeNotFound)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.Quotes == nil {
		return
	}

	api := engine.Group("/api")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Deadline(cfg.RequestTimeout))
	}

	cfg.Quotes.RegisterLegacyRoutes(api)
	cfg.Quotes.RegisterQuoteRoutes(api.Group("/v1"))
}

func routeNotFound(c *gin.Context) {
	resp := dto.NewErrorResponse(dto.ErrorCodeNotFound, "Route not found").
		WithDetail(c.Request.Method + " " + c.Request.URL.Path).
		WithTraceID(dto.GetTraceID(c))

	c.JSON(dto.HTTPStatusFromCode(resp.Code), resp)
}
