package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-quote/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
)

func serverConfig(port int, maxBody int64) *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           port,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: maxBody,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_New(t *testing.T) {
	cfg := serverConfig(8080, 1<<20)

	srv := New(cfg, discardLogger())

	require.NotNil(t, srv.Engine())
	assert.Same(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
	assert.Equal(t, cfg.ReadTimeout, srv.httpServer.ReadHeaderTimeout)
}

func TestServer_StartServesAndShutsDown(t *testing.T) {
	srv := New(serverConfig(0, 1<<20), discardLogger())
	srv.Engine().GET("/-/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	errCh, err := srv.Start()
	require.NoError(t, err)

	addr := srv.Addr()
	assert.NotEqual(t, "127.0.0.1:0", addr, "Addr reports the bound port")

	resp, err := http.Get("http://" + addr + "/-/live")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "channel closes without an error on shutdown: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve loop did not stop")
	}
}

func TestServer_StartReportsBindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = taken.Close() })

	port := taken.Addr().(*net.TCPAddr).Port

	srv := New(serverConfig(port, 1<<20), discardLogger())

	errCh, err := srv.Start()
	require.Error(t, err)
	assert.Nil(t, errCh)
	assert.Contains(t, err.Error(), "listening on")
}

func TestServer_LimitsRequestBody(t *testing.T) {
	srv := New(serverConfig(0, 64), discardLogger())
	srv.Engine().POST("/api/quote", handlers.NewQuoteHandler(nil).PostQuote)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "body over limit",
			body:       `{"date":"2023-03-21","padding":"` + strings.Repeat("x", 128) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   dto.ErrorCodeTooLarge,
		},
		{
			name:       "malformed body under limit",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			srv.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
