package acl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/daily-quote/internal/adapters/clients"
	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

// DefaultHealthName is the health check name used when none is configured.
const DefaultHealthName = "quote-upstream"

// QuotePageClientConfig contains configuration for the quote page client.
type QuotePageClientConfig struct {
	// Client performs the page requests. Its headers and timeout apply.
	Client *clients.Client

	// BaseURL is pinged by Check.
	BaseURL string

	// Name identifies the upstream in health results. Defaults to DefaultHealthName.
	Name string

	// Strategies override DefaultStrategies when non-empty.
	Strategies []ExtractionStrategy

	// OnMiss, if set, is called once per page that yielded no quote.
	OnMiss func(reason MissReason)

	Logger *slog.Logger
}

// QuotePageClient implements ports.QuoteSource by scraping the quote out of
// the upstream's per-date HTML page. It also implements ports.HealthChecker.
type QuotePageClient struct {
	client     *clients.Client
	baseURL    string
	name       string
	strategies []ExtractionStrategy
	onMiss     func(MissReason)
	logger     *slog.Logger
}

// NewQuotePageClient creates a quote page client.
// Panics if Client is nil.
func NewQuotePageClient(cfg QuotePageClientConfig) *QuotePageClient {
	if cfg.Client == nil {
		panic("QuotePageClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = DefaultHealthName
	}

	strategies := cfg.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	onMiss := cfg.OnMiss
	if onMiss == nil {
		onMiss = func(MissReason) {}
	}

	return &QuotePageClient{
		client:     cfg.Client,
		baseURL:    cfg.BaseURL,
		name:       name,
		strategies: strategies,
		onMiss:     onMiss,
		logger:     logger.With(slog.String("component", "acl.QuotePageClient")),
	}
}

// FetchQuote downloads the page at url and extracts its quote.
// Every failure collapses to ("", false).
func (c *QuotePageClient) FetchQuote(ctx context.Context, url string) (string, bool) {
	logger := logging.FromContextOr(ctx, c.logger).With(slog.String("url", url))

	resp, err := c.client.Fetch(ctx, url)
	if err != nil {
		return c.miss(ctx, logger, classifyFetchError(err), slog.Any("error", err))
	}

	if reason, ok := classifyStatus(resp.StatusCode); !ok {
		return c.miss(ctx, logger, reason, slog.Int("status", resp.StatusCode))
	}

	extraction, err := ExtractQuote(resp.Body, c.strategies)
	if err != nil {
		return c.miss(ctx, logger, MissUnparsable, slog.Any("error", err))
	}

	if extraction.Quote == "" {
		return c.miss(ctx, logger, MissNoQuote,
			slog.Int("islands", extraction.Islands),
			slog.Int("malformed", extraction.Malformed),
		)
	}

	logger.DebugContext(ctx, "quote extracted",
		slog.Int("islands", extraction.Islands),
		slog.Int("length", len(extraction.Quote)),
	)

	return extraction.Quote, true
}

func (c *QuotePageClient) miss(ctx context.Context, logger *slog.Logger, reason MissReason, attrs ...slog.Attr) (string, bool) {
	c.onMiss(reason)

	level := slog.LevelDebug
	if reason == MissTransport {
		level = slog.LevelWarn
	}

	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("reason", string(reason)))

	for _, a := range attrs {
		args = append(args, a)
	}

	logger.Log(ctx, level, "no quote on page", args...)

	return "", false
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *QuotePageClient) Name() string {
	return c.name
}

// Check reports whether the upstream answers at all. Any HTTP response,
// including 404, counts as reachable. While the client's circuit is open,
// Check fails without calling the upstream.
// Implements ports.HealthChecker.
func (c *QuotePageClient) Check(ctx context.Context) error {
	if c.baseURL == "" {
		return nil
	}

	if err := c.client.Ping(ctx, c.baseURL); err != nil {
		return fmt.Errorf("%s unreachable: %w", c.name, err)
	}

	return nil
}
