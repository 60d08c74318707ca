// Package storage opens the quote store named by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/daily-quote/internal/adapters/storage/mongodb"
	"github.com/jsamuelsen/daily-quote/internal/adapters/storage/postgres"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
	"github.com/jsamuelsen/daily-quote/internal/ports"
)

// Open connects to the store selected by the DSN scheme. When cfg.EnsureSchema
// is set, the table or indexes are created before returning. The caller owns
// the returned store and must Close it.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (ports.QuoteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connectCtx := ctx

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc

		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var (
		store ports.QuoteStore
		err   error
	)

	switch cfg.Backend() {
	case config.StoreBackendPostgres:
		store, err = postgres.New(connectCtx, postgres.Config{
			DSN:            cfg.DSN,
			Table:          cfg.Table,
			MaxConns:       cfg.MaxConns,
			ConnectTimeout: cfg.ConnectTimeout,
		}, logger)
	case config.StoreBackendMongo:
		store, err = mongodb.New(connectCtx, mongodb.Config{
			DSN:            cfg.DSN,
			Database:       cfg.Database,
			Collection:     cfg.Collection,
			MaxConns:       cfg.MaxConns,
			ConnectTimeout: cfg.ConnectTimeout,
		}, logger)
	default:
		scheme, _, _ := strings.Cut(cfg.DSN, "://")
		return nil, fmt.Errorf("unsupported store dsn scheme %q", scheme)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Backend(), err)
	}

	if !cfg.EnsureSchema {
		return store, nil
	}

	if err := store.EnsureSchema(connectCtx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	return store, nil
}
