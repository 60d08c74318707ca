//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/daily-quote/internal/adapters/http"
	"github.com/jsamuelsen/daily-quote/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-quote/internal/bootstrap"
	"github.com/jsamuelsen/daily-quote/internal/domain"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
	"github.com/jsamuelsen/daily-quote/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream serves quote pages from an in-memory table and counts hits
// per page.
type fakeUpstream struct {
	*httptest.Server

	mu     sync.Mutex
	pages  map[string]string
	hits   map[string]int
	delay  time.Duration
	status int
}

func newFakeUpstream() *fakeUpstream {
	u := &fakeUpstream{
		pages: make(map[string]string),
		hits:  make(map[string]int),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))

	return u
}

// BaseURL is the locator base; pages live directly beneath it.
func (u *fakeUpstream) BaseURL() string {
	return u.URL + "/quotes/date"
}

// Publish makes slug (e.g. "march-21-2023") carry quote.
func (u *fakeUpstream) Publish(slug, quote string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pages[slug] = quote
}

// Fail makes every page answer with status until reset with 0.
func (u *fakeUpstream) Fail(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.status = status
}

// Slow delays every page by d.
func (u *fakeUpstream) Slow(d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.delay = d
}

// Hits returns how often slug was requested.
func (u *fakeUpstream) Hits(slug string) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.hits[slug]
}

// TotalHits returns the number of page requests served.
func (u *fakeUpstream) TotalHits() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	total := 0
	for _, n := range u.hits {
		total += n
	}

	return total
}

func (u *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/quotes/date/")

	u.mu.Lock()
	u.hits[slug]++
	quote, ok := u.pages[slug]
	status := u.status
	delay := u.delay
	u.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `<!doctype html><html><body><main>%s</main>`+
		`<script id="__NEXT_DATA__" type="application/json">`+
		`{"props":{"pageProps":{"pageDataDetail":{"summary":[{"value":%q}]}}}}`+
		`</script></body></html>`, quote, quote)
}

// memStore is a map-backed ports.QuoteStore enforcing one quote per key.
type memStore struct {
	mu      sync.Mutex
	quotes  map[domain.QuoteKey]*domain.Quote
	inserts int
}

func newMemStore() *memStore {
	return &memStore{quotes: make(map[domain.QuoteKey]*domain.Quote)}
}

func (s *memStore) FindByKey(_ context.Context, key domain.QuoteKey) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.quotes[key]; ok {
		return q, nil
	}

	return nil, domain.NewQuoteNotFoundError(key)
}

func (s *memStore) ListByMonthDay(_ context.Context, month, day string) ([]*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Quote

	for key, q := range s.quotes {
		if key.Month == month && key.Day == day {
			out = append(out, q)
		}
	}

	slices.SortFunc(out, func(a, b *domain.Quote) int { return a.Year - b.Year })

	return out, nil
}

func (s *memStore) Insert(_ context.Context, q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[q.Key()]; ok {
		return domain.NewDuplicateQuoteError(q.Key(), nil)
	}

	now := time.Now().UTC()
	q.CreatedAt, q.UpdatedAt = now, now
	s.quotes[q.Key()] = q
	s.inserts++

	return nil
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.quotes)
}

func (*memStore) EnsureSchema(context.Context) error { return nil }
func (*memStore) Name() string                      { return "quote-store" }
func (*memStore) Check(context.Context) error        { return nil }
func (*memStore) Close(context.Context) error        { return nil }

// testEnv is a fully wired service in front of a fake upstream.
type testEnv struct {
	upstream *fakeUpstream
	store    ports.QuoteStore
	pipeline *bootstrap.Pipeline
	server   *httptest.Server
}

// newTestEnvWith wires the real pipeline and router against store.
// Years 2021 to 2023 are covered.
func newTestEnvWith(tb testing.TB, store ports.QuoteStore) *testEnv {
	tb.Helper()

	upstream := newFakeUpstream()

	cfg, err := config.Load("")
	if err != nil {
		tb.Fatalf("loading config: %v", err)
	}

	cfg.Store.DSN = "postgres://unused:5432/quotes"
	cfg.Upstream.BaseURL = upstream.BaseURL()
	cfg.Upstream.Timeout = 2 * time.Second
	cfg.Quotes.Years.From = 2021
	cfg.Quotes.Years.To = 2023

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pipeline, err := bootstrap.Build(context.Background(), cfg, logger, bootstrap.Options{
		Registerer: prometheus.NewRegistry(),
		OpenStore: func(context.Context, config.StoreConfig, *slog.Logger) (ports.QuoteStore, error) {
			return store, nil
		},
	})
	if err != nil {
		tb.Fatalf("building pipeline: %v", err)
	}

	registry := ports.NewHealthRegistry()
	if err := pipeline.RegisterHealth(registry); err != nil {
		tb.Fatalf("registering health checks: %v", err)
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:         logger,
		ServiceName:    cfg.App.Name,
		Health:         handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		Quotes:         handlers.NewQuoteHandler(pipeline.Service),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	env := &testEnv{
		upstream: upstream,
		store:    store,
		pipeline: pipeline,
		server:   httptest.NewServer(engine),
	}

	tb.Cleanup(func() {
		env.server.Close()
		upstream.Close()
	})

	return env
}

func newTestEnv(tb testing.TB) (*testEnv, *memStore) {
	tb.Helper()

	store := newMemStore()

	return newTestEnvWith(tb, store), store
}

// postQuote sends the original request form to the service.
func (e *testEnv) postQuote(ctx context.Context, body string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.server.URL+"/api/quote", strings.NewReader(body))
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return e.do(req)
}

func (e *testEnv) get(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.server.URL+path, http.NoBody)
	if err != nil {
		return nil, nil, err
	}

	return e.do(req)
}

func (e *testEnv) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := e.server.Client().Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)

	return resp, body, err
}
