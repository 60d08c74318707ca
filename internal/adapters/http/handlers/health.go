// Package handlers holds the gin handlers of the quote API and the /-/ ops
// endpoints.
package handlers

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
	"github.com/jsamuelsen/daily-quote/internal/ports"
)

// BuildInfo is served on /-/build. Version, Commit and BuildTime are set
// through -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills in the running Go version.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler serves the probe, build and metrics endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	metrics   http.Handler
}

// HealthOption customizes a HealthHandler.
type HealthOption func(*HealthHandler)

// WithGatherer serves /-/metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) HealthOption {
	return func(h *HealthHandler) {
		h.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
}

// NewHealthHandler returns the ops handler. A nil registry reports ready.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
		metrics:   promhttp.Handler(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers GET /-/live. It never looks at the store or upstream.
func (h *HealthHandler) Liveness(c *gin.Context) {
	noStore(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness answers GET /-/ready with every registered check, typically the
// quote store and the upstream site. Any failing check makes it 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	noStore(c)

	if h.registry == nil {
		c.JSON(http.StatusOK, readinessResponse{Status: string(ports.HealthStatusHealthy)})
		return
	}

	ctx := c.Request.Context()
	result := h.registry.CheckAll(ctx)

	if result.Status != ports.HealthStatusUnhealthy {
		c.JSON(http.StatusOK, readinessResponse{Status: string(result.Status), Checks: result.Checks})
		return
	}

	logger := logging.FromContext(ctx)
	for name, check := range result.Checks {
		if check.Status == ports.HealthStatusUnhealthy {
			logger.WarnContext(ctx, "not ready",
				slog.String("check", name),
				slog.String("message", check.Message),
				slog.Duration("duration", check.Duration),
			)
		}
	}

	c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: string(result.Status), Checks: result.Checks})
}

// Build answers GET /-/build.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterHealthRoutes mounts live, ready, build and metrics on rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.Build)
	rg.GET("/metrics", gin.WrapH(h.metrics))
}

// RegisterHealthRoutesOnEngine mounts the ops routes under /-/.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}

// noStore keeps probe answers out of intermediary caches.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}
