package acl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-quote/internal/adapters/clients"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
)

// missRecorder collects the reasons passed to OnMiss.
type missRecorder struct {
	mu      sync.Mutex
	reasons []MissReason
}

func (r *missRecorder) record(reason MissReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *missRecorder) all() []MissReason {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]MissReason(nil), r.reasons...)
}

// setupPageClient creates a QuotePageClient against a test HTTP server.
func setupPageClient(t *testing.T, handler http.HandlerFunc, modify ...func(*clients.Config)) (*QuotePageClient, *httptest.Server, *missRecorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &clients.Config{
		ServiceName: "test-upstream",
		Timeout:     5 * time.Second,
		Headers: http.Header{
			"User-Agent":    {"Mozilla/5.0"},
			"Cache-Control": {"no-store"},
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	}

	for _, m := range modify {
		m(cfg)
	}

	client, err := clients.New(cfg)
	require.NoError(t, err)

	misses := &missRecorder{}

	return NewQuotePageClient(QuotePageClientConfig{
		Client:  client,
		BaseURL: server.URL,
		OnMiss:  misses.record,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), server, misses
}

func servePage(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}
}

func TestNewQuotePageClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewQuotePageClient(QuotePageClientConfig{})
	})
}

func TestNewQuotePageClient_Defaults(t *testing.T) {
	client, err := clients.New(&clients.Config{ServiceName: "upstream"})
	require.NoError(t, err)

	c := NewQuotePageClient(QuotePageClientConfig{Client: client})

	assert.Equal(t, DefaultHealthName, c.Name())
	assert.Len(t, c.strategies, 2)
	assert.NotPanics(t, func() { c.onMiss(MissNoQuote) })
}

func TestQuotePageClient_FetchQuote(t *testing.T) {
	var received *http.Request

	c, server, misses := setupPageClient(t, func(w http.ResponseWriter, r *http.Request) {
		received = r.Clone(context.Background())
		servePage(page(island(`{"props":{"pageProps":{"pageDataDetail":{"summary":[{"value":"  Be total.  "}]}}}}`)))(w, r)
	})

	quote, ok := c.FetchQuote(context.Background(), server.URL+"/march-21-2023")

	require.True(t, ok)
	assert.Equal(t, "Be total.", quote)
	assert.Empty(t, misses.all())

	require.NotNil(t, received)
	assert.Equal(t, "/march-21-2023", received.URL.Path)
	assert.Equal(t, "Mozilla/5.0", received.Header.Get("User-Agent"))
	assert.Equal(t, "no-store", received.Header.Get("Cache-Control"))
}

func TestQuotePageClient_FetchQuote_LastIslandWins(t *testing.T) {
	c, server, _ := setupPageClient(t, servePage(page(island(nestedIsland), island(shallowIsland))))

	quote, ok := c.FetchQuote(context.Background(), server.URL)

	require.True(t, ok)
	assert.Equal(t, "Shallow quote.", quote)
}

func TestQuotePageClient_FetchQuote_Absent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  MissReason
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			reason:  MissStatus,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			reason:  MissStatus,
		},
		{
			name:    "not modified",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotModified) },
			reason:  MissStatus,
		},
		{
			name:    "page without islands",
			handler: servePage([]byte("<html><body>Coming soon</body></html>")),
			reason:  MissNoQuote,
		},
		{
			name:    "only malformed islands",
			handler: servePage(page(island("{oops"))),
			reason:  MissNoQuote,
		},
		{
			name:    "whitespace-only quote",
			handler: servePage(page(island(`{"pageDataDetail":{"summary":[{"value":" \n "}]}}`))),
			reason:  MissNoQuote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, server, misses := setupPageClient(t, tt.handler)

			quote, ok := c.FetchQuote(context.Background(), server.URL)

			assert.False(t, ok)
			assert.Empty(t, quote)
			assert.Equal(t, []MissReason{tt.reason}, misses.all())
		})
	}
}

func TestQuotePageClient_FetchQuote_TransportFailure(t *testing.T) {
	c, server, misses := setupPageClient(t, servePage(page(island(shallowIsland))))
	server.Close()

	quote, ok := c.FetchQuote(context.Background(), server.URL)

	assert.False(t, ok)
	assert.Empty(t, quote)
	assert.Equal(t, []MissReason{MissTransport}, misses.all())
}

func TestQuotePageClient_FetchQuote_Timeout(t *testing.T) {
	c, server, misses := setupPageClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(cfg *clients.Config) { cfg.Timeout = 50 * time.Millisecond })

	_, ok := c.FetchQuote(context.Background(), server.URL)

	assert.False(t, ok)
	require.Len(t, misses.all(), 1)
	assert.Contains(t, []MissReason{MissCanceled, MissTransport}, misses.all()[0])
}

func TestQuotePageClient_FetchQuote_BodyTooLarge(t *testing.T) {
	c, server, misses := setupPageClient(t, servePage([]byte(strings.Repeat("x", 4096))),
		func(cfg *clients.Config) { cfg.MaxBodyBytes = 1024 })

	_, ok := c.FetchQuote(context.Background(), server.URL)

	assert.False(t, ok)
	assert.Equal(t, []MissReason{MissBodyTooLarge}, misses.all())
}

func TestQuotePageClient_FetchQuote_FailingPagesDoNotBlockOthers(t *testing.T) {
	c, server, misses := setupPageClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "-2014") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write(page(island(shallowIsland)))
	}, func(cfg *clients.Config) { cfg.Circuit.MaxFailures = 1 })

	_, ok := c.FetchQuote(context.Background(), server.URL+"/march-21-2014")
	assert.False(t, ok)

	quote, ok := c.FetchQuote(context.Background(), server.URL+"/march-21-2015")
	assert.True(t, ok)
	assert.NotEmpty(t, quote)

	assert.Equal(t, []MissReason{MissStatus}, misses.all())
}

func TestQuotePageClient_CheckFailsFastWhileCircuitOpen(t *testing.T) {
	var hits atomic.Int32

	c, server, _ := setupPageClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *clients.Config) { cfg.Circuit.MaxFailures = 1 })

	_, ok := c.FetchQuote(context.Background(), server.URL+"/march-21-2014")
	require.False(t, ok)

	err := c.Check(context.Background())

	require.ErrorIs(t, err, clients.ErrCircuitOpen)
	assert.Equal(t, int32(1), hits.Load())
}

func TestQuotePageClient_Check(t *testing.T) {
	t.Run("any response is healthy", func(t *testing.T) {
		c, _, _ := setupPageClient(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

		assert.NoError(t, c.Check(context.Background()))
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		c, server, _ := setupPageClient(t, servePage(nil))
		server.Close()

		err := c.Check(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), DefaultHealthName)
	})
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		err  error
		want MissReason
	}{
		{err: clients.ErrBodyTooLarge, want: MissBodyTooLarge},
		{err: context.Canceled, want: MissCanceled},
		{err: context.DeadlineExceeded, want: MissCanceled},
		{err: io.ErrUnexpectedEOF, want: MissTransport},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFetchError(tt.err))
		})
	}
}
