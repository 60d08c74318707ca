// Package app runs the cache-then-fetch quote pipeline over the ports. It
// knows nothing of HTTP, SQL or HTML.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/daily-quote/internal/domain"
	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
	"github.com/jsamuelsen/daily-quote/internal/ports"
)

const (
	// DefaultFirstYear is the first year covered by across-years lookups.
	DefaultFirstYear = 2014

	// DefaultFetchConcurrency bounds parallel upstream fetches for one request.
	DefaultFetchConcurrency = 4
)

// errQuoteAbsent marks a miss the upstream could not fill.
var errQuoteAbsent = fmt.Errorf("quote not published: %w", ErrAbandoned)

// QuoteService serves quotes from the store, filling misses from the upstream.
//
// Only found quotes are written. A date the upstream has no quote for is
// fetched again on the next request.
type QuoteService struct {
	source      ports.QuoteSource
	store       ports.QuoteRepository
	locator     domain.Locator
	firstYear   int
	lastYear    int
	concurrency int
	metrics     ports.QuoteMetrics
	now         func() time.Time
	executor    *Executor
	logger      *slog.Logger
}

// QuoteServiceConfig contains the dependencies and settings of the quote service.
type QuoteServiceConfig struct {
	Source ports.QuoteSource
	Store  ports.QuoteRepository

	Locator domain.Locator

	// FirstYear and LastYear bound across-years lookups. Zero FirstYear means
	// DefaultFirstYear, zero LastYear means the current year.
	FirstYear int
	LastYear  int

	// FetchConcurrency bounds parallel upstream fetches. 1 fetches sequentially.
	FetchConcurrency int

	Metrics ports.QuoteMetrics

	// Now is the service clock. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// It panics if Source or Store is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Source == nil {
		panic("app: QuoteServiceConfig.Source is required")
	}

	if cfg.Store == nil {
		panic("app: QuoteServiceConfig.Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.QuoteService"))

	svc := &QuoteService{
		source:      cfg.Source,
		store:       cfg.Store,
		locator:     cfg.Locator,
		firstYear:   cfg.FirstYear,
		lastYear:    cfg.LastYear,
		concurrency: cfg.FetchConcurrency,
		metrics:     cfg.Metrics,
		now:         cfg.Now,
		executor:    NewExecutor(logger),
		logger:      logger,
	}

	if svc.firstYear == 0 {
		svc.firstYear = DefaultFirstYear
	}

	if svc.concurrency <= 0 {
		svc.concurrency = DefaultFetchConcurrency
	}

	if svc.metrics == nil {
		svc.metrics = ports.NopQuoteMetrics{}
	}

	if svc.now == nil {
		svc.now = time.Now
	}

	return svc
}

// YearRange returns the years covered by GetQuotesAcrossYears right now.
func (s *QuoteService) YearRange() domain.YearRange {
	last := s.lastYear
	if last == 0 {
		last = s.now().Year()
	}

	return domain.YearRange{From: s.firstYear, To: last}
}

// GetQuote returns the quote for date's own year.
// It returns (nil, nil) when neither the store nor the upstream has one.
func (s *QuoteService) GetQuote(ctx context.Context, date time.Time) (*domain.Quote, error) {
	loc := s.locator.Locate(date, date.Year())
	logger := logging.FromContextOr(ctx, s.logger).With(slog.String("quote_key", loc.Key.String()))

	cached, err := s.store.FindByKey(ctx, loc.Key)
	if err == nil {
		s.metrics.CacheLookups(ports.CacheHit, 1)
		logger.DebugContext(ctx, "quote served from store")

		return cached, nil
	}

	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("looking up quote %s: %w", loc.Key, err)
	}

	s.metrics.CacheLookups(ports.CacheMiss, 1)

	quote, err := s.resolveMiss(ctx, loc)
	if errors.Is(err, ErrAbandoned) {
		logger.InfoContext(ctx, "no quote published", slog.String("url", loc.URL))

		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return quote, nil
}

// GetQuotesAcrossYears returns the quotes for date's month and day in every
// year of YearRange, ordered by ascending year. Years the upstream has no
// quote for are left out. Any store failure fails the whole request.
func (s *QuoteService) GetQuotesAcrossYears(ctx context.Context, date time.Time) ([]*domain.Quote, error) {
	years := s.YearRange()
	key := domain.KeyFor(date, 0)
	logger := logging.FromContextOr(ctx, s.logger).With(
		slog.String("month", key.Month),
		slog.String("day", key.Day),
	)

	cached, err := s.store.ListByMonthDay(ctx, key.Month, key.Day)
	if err != nil {
		return nil, fmt.Errorf("listing quotes for %s-%s: %w", key.Month, key.Day, err)
	}

	byYear := make(map[int]*domain.Quote, len(cached))

	for _, q := range cached {
		if !years.Contains(q.Year) {
			continue
		}

		if _, seen := byYear[q.Year]; !seen {
			byYear[q.Year] = q
		}
	}

	var misses []domain.Location

	for _, year := range years.Years() {
		if _, ok := byYear[year]; !ok {
			misses = append(misses, s.locator.Locate(date, year))
		}
	}

	s.metrics.CacheLookups(ports.CacheHit, len(byYear))
	s.metrics.CacheLookups(ports.CacheMiss, len(misses))

	logger.DebugContext(ctx, "resolving across-years lookup",
		slog.Int("cached", len(byYear)),
		slog.Int("missing", len(misses)),
	)

	tasks := make([]func(context.Context) (*domain.Quote, error), len(misses))
	for i, loc := range misses {
		tasks[i] = func(ctx context.Context) (*domain.Quote, error) {
			q, err := s.resolveMiss(ctx, loc)
			if errors.Is(err, ErrAbandoned) {
				return nil, nil
			}

			return q, err
		}
	}

	var errs []error

	for _, r := range ParallelPartialLimit(ctx, s.concurrency, tasks...) {
		switch {
		case r.Err != nil:
			errs = append(errs, r.Err)
		case r.Value != nil:
			byYear[r.Value.Year] = r.Value
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("resolving quotes across years: %w", errors.Join(errs...))
	}

	quotes := make([]*domain.Quote, 0, len(byYear))
	for _, q := range byYear {
		quotes = append(quotes, q)
	}

	slices.SortFunc(quotes, func(a, b *domain.Quote) int { return a.Year - b.Year })

	return quotes, nil
}

// resolveMiss fetches the quote at loc and stores it. It returns an error
// wrapping ErrAbandoned when the upstream has no quote.
func (s *QuoteService) resolveMiss(ctx context.Context, loc domain.Location) (*domain.Quote, error) {
	op := Operation[domain.Location, string, *domain.Quote]{
		Name:    "resolve_quote_miss",
		Perform: s.fetch,
		Verify: func(_ context.Context, loc domain.Location, text string) (*domain.Quote, error) {
			if text == "" {
				return nil, errQuoteAbsent
			}

			return domain.NewQuote(loc, text), nil
		},
		Archive: s.persist,
	}

	return Execute(ctx, s.executor, op, loc)
}

func (s *QuoteService) fetch(ctx context.Context, loc domain.Location) (string, error) {
	text, ok := s.source.FetchQuote(ctx, loc.URL)
	s.metrics.UpstreamFetch(ok)

	if !ok {
		return "", errQuoteAbsent
	}

	return text, nil
}

// persist inserts q. When another writer stored the same key first, the
// stored record wins and is returned instead.
func (s *QuoteService) persist(ctx context.Context, _ domain.Location, q *domain.Quote) (*domain.Quote, error) {
	err := s.store.Insert(ctx, q)
	if err == nil {
		s.metrics.StoreInsert(ports.InsertCreated)

		return q, nil
	}

	if !domain.IsConflict(err) {
		s.metrics.StoreInsert(ports.InsertError)

		return nil, fmt.Errorf("storing quote %s: %w", q.Key(), err)
	}

	s.metrics.StoreInsert(ports.InsertDuplicate)

	stored, err := s.store.FindByKey(ctx, q.Key())
	if err != nil {
		return nil, fmt.Errorf("re-reading quote %s after duplicate insert: %w", q.Key(), err)
	}

	return stored, nil
}
