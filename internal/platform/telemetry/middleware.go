package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/daily-quote/telemetry"

// HeaderTraceID echoes the server span's trace ID to the caller.
const HeaderTraceID = "X-Trace-ID"

type serverMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of quote API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Quote API requests served"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Quote API requests in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &serverMetrics{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// Middleware returns the tracing chain for the router: otelgin opens a server
// span per request, then the trace ID is echoed in X-Trace-ID, attached to
// the request logger and used to label the OTel HTTP metrics. Probe traffic
// under /-/ is not traced.
func Middleware(serviceName string, opts ...otelgin.Option) gin.HandlersChain {
	opts = append([]otelgin.Option{otelgin.WithFilter(notProbe)}, opts...)

	m, err := newServerMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{otelgin.Middleware(serviceName, opts...), m.handler()}
}

func notProbe(r *http.Request) bool {
	return !strings.HasPrefix(r.URL.Path, "/-/")
}

func (m *serverMetrics) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			traceID := sc.TraceID().String()

			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.WithTraceID(ctx, traceID))
		}

		if m == nil {
			c.Next()
			return
		}

		route := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		)

		start := time.Now()

		m.inFlight.Add(ctx, 1, route)
		defer m.inFlight.Add(ctx, -1, route)

		c.Next()

		done := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.Int("http.status_code", c.Writer.Status()),
		)

		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.requests.Add(ctx, 1, done)
	}
}
