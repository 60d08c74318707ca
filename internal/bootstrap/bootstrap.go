// Package bootstrap assembles the quote pipeline from configuration. It is
// shared by the HTTP service and the quotectl command.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/daily-quote/internal/adapters/clients"
	"github.com/jsamuelsen/daily-quote/internal/adapters/clients/acl"
	"github.com/jsamuelsen/daily-quote/internal/adapters/storage"
	"github.com/jsamuelsen/daily-quote/internal/app"
	"github.com/jsamuelsen/daily-quote/internal/domain"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
	"github.com/jsamuelsen/daily-quote/internal/platform/metrics"
	"github.com/jsamuelsen/daily-quote/internal/ports"
)

// Pipeline is the wired quote pipeline. Close releases the store.
type Pipeline struct {
	Store   ports.QuoteStore
	Source  *acl.QuotePageClient
	Service *app.QuoteService
	Metrics *metrics.QuoteMetrics
	Locator domain.Locator
}

// Options tune Build.
type Options struct {
	// Registerer receives the pipeline collectors. Nil uses the default registerer.
	Registerer prometheus.Registerer

	// OpenStore overrides storage.Open, mainly in tests.
	OpenStore func(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (ports.QuoteStore, error)
}

// UpstreamHeaders are the headers sent with every upstream page request.
func UpstreamHeaders(userAgent string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", userAgent)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")

	return h
}

// NewSource builds the upstream page client described by cfg.
func NewSource(cfg *config.Config, m *metrics.QuoteMetrics, logger *slog.Logger) (*acl.QuotePageClient, error) {
	httpClient, err := clients.New(&clients.Config{
		ServiceName:  cfg.Upstream.Name,
		Timeout:      cfg.Upstream.Timeout,
		MaxBodyBytes: cfg.Client.MaxBodyBytes,
		Headers:      UpstreamHeaders(cfg.Upstream.UserAgent),
		Circuit:      cfg.Client.CircuitBreaker,
		Transport:    cfg.Client.Transport,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating upstream client: %w", err)
	}

	pageCfg := acl.QuotePageClientConfig{
		Client:  httpClient,
		BaseURL: cfg.Upstream.BaseURL,
		Name:    cfg.Upstream.Name,
		Logger:  logger,
	}

	if m != nil {
		pageCfg.OnMiss = func(reason acl.MissReason) {
			m.UpstreamMiss(string(reason))
		}
	}

	return acl.NewQuotePageClient(pageCfg), nil
}

// Build opens the store and wires source, metrics and service. On error
// nothing is left open.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := metrics.New(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	source, err := NewSource(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	open := opts.OpenStore
	if open == nil {
		open = storage.Open
	}

	store, err := open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("opening quote store: %w", err)
	}

	locator := domain.NewLocator(cfg.Upstream.BaseURL)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Source:           source,
		Store:            store,
		Locator:          locator,
		FirstYear:        cfg.Quotes.Years.From,
		LastYear:         cfg.Quotes.Years.To,
		FetchConcurrency: cfg.Quotes.FetchConcurrency,
		Metrics:          m,
		Logger:           logger,
	})

	return &Pipeline{
		Store:   store,
		Source:  source,
		Service: service,
		Metrics: m,
		Locator: locator,
	}, nil
}

// RegisterHealth adds the store and upstream checks to registry.
func (p *Pipeline) RegisterHealth(registry ports.HealthRegistry) error {
	if err := registry.Register(p.Store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	if err := registry.Register(p.Source); err != nil {
		return fmt.Errorf("registering upstream health check: %w", err)
	}

	return nil
}

// Close releases the store connection.
func (p *Pipeline) Close(ctx context.Context) error {
	if p == nil || p.Store == nil {
		return nil
	}

	return p.Store.Close(ctx)
}
