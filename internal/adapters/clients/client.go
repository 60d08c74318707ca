package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/middleware"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

const (
	scope = "github.com/jsamuelsen/daily-quote/internal/adapters/clients"

	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 4 << 20
)

// Fetch outcomes, recorded on the outcome counter.
const (
	outcomeResponse    = "response"
	outcomeError       = "error"
	outcomeCircuitOpen = "circuit_open"
	outcomeTooLarge    = "too_large"
)

// Config configures a Client. ServiceName is required.
type Config struct {
	ServiceName string

	// Timeout bounds one request including the body read.
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64

	// Headers go on every request, e.g. the upstream User-Agent.
	Headers http.Header

	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	Logger *slog.Logger
}

// Response is a response whose body has been read in full.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode/100 == 2
}

// Client fetches pages from one downstream site. A call is a single attempt;
// a circuit breaker tracks the site's health for Ping. Spans and http.client
// metrics come from the otelhttp transport; the client adds an outcome
// counter on top.
type Client struct {
	http         *http.Client
	service      string
	headers      http.Header
	maxBodyBytes int64
	cb           *CircuitBreaker
	logger       *slog.Logger
	outcomes     metric.Int64Counter
}

// New builds a Client from cfg, filling zero values with defaults.
func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	timeout := orDefault(cfg.Timeout, defaultTimeout)
	maxBody := orDefault(cfg.MaxBodyBytes, defaultMaxBodyBytes)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "clients"), slog.String("downstream", cfg.ServiceName))

	outcomes, err := otel.Meter(scope).Int64Counter("daily_quote.upstream.fetches",
		metric.WithDescription("Upstream fetches by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating outcome counter: %w", err)
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig(cfg.Circuit))
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(pooledTransport(cfg.Transport),
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return r.Method + " " + cfg.ServiceName
				}),
			),
		},
		service:      cfg.ServiceName,
		headers:      cfg.Headers.Clone(),
		maxBodyBytes: maxBody,
		cb:           cb,
		logger:       logger,
		outcomes:     outcomes,
	}, nil
}

func orDefault[T int64 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}

	return v
}

func pooledTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	if tc.MaxIdleConns > 0 {
		t.MaxIdleConns = tc.MaxIdleConns
	}

	if tc.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = tc.MaxIdleConnsPerHost
	}

	if tc.IdleConnTimeout > 0 {
		t.IdleConnTimeout = tc.IdleConnTimeout
	}

	return t
}

// Fetch GETs url and reads the body. Any status comes back without error;
// the caller decides what a non-2xx means. Errors are ErrBodyTooLarge or the
// transport failure.
//
// Fetch always makes its one attempt. Its outcome feeds the circuit breaker,
// but an open circuit never stops a page fetch: one URL failing says nothing
// about the next.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, url)
}

// Ping GETs url unless the circuit is open, in which case it fails fast with
// ErrCircuitOpen. Any response counts as reachable.
func (c *Client) Ping(ctx context.Context, url string) error {
	if !c.cb.Allow() {
		c.count(ctx, outcomeCircuitOpen, 0)
		logging.FromContextOr(ctx, c.logger).WarnContext(ctx, "ping blocked by circuit breaker", slog.String("url", url))

		return ErrCircuitOpen
	}

	_, err := c.do(ctx, url)

	return err
}

func (c *Client) do(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		c.cb.Release()
		return nil, fmt.Errorf("creating request: %w", err)
	}

	logger := logging.FromContextOr(ctx, c.logger).With(slog.String("url", url))

	c.setHeaders(ctx, req)

	start := time.Now()
	resp, err := c.read(req)
	elapsed := time.Since(start)

	if err != nil {
		c.settle(ctx, false)

		outcome := outcomeError
		if errors.Is(err, ErrBodyTooLarge) {
			outcome = outcomeTooLarge
		}

		c.count(ctx, outcome, 0)
		logger.WarnContext(ctx, "fetch failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, err
	}

	// 4xx is an answer about the page, not about the site's health.
	c.settle(ctx, resp.StatusCode < http.StatusInternalServerError)

	c.count(ctx, outcomeResponse, resp.StatusCode)
	logger.DebugContext(ctx, "fetch completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(resp.Body)),
		slog.Duration("duration", elapsed),
	)

	return resp, nil
}

// settle reports an attempt to the breaker. A caller that gave up before the
// upstream answered tells nothing about the upstream.
func (c *Client) settle(ctx context.Context, healthy bool) {
	switch {
	case ctx.Err() != nil:
		c.cb.Release()
	case healthy:
		c.cb.RecordSuccess()
	default:
		c.cb.RecordFailure()
	}
}

func (c *Client) read(req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBodyBytes)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// CircuitState reports the breaker's state.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	for name, values := range c.headers {
		req.Header[name] = append([]string(nil), values...)
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
}

func (c *Client) count(ctx context.Context, outcome string, status int) {
	attrs := []attribute.KeyValue{
		attribute.String("peer.service", c.service),
		attribute.String("outcome", outcome),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}

	c.outcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
}
