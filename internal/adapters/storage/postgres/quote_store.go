// Package postgres provides the Postgres-backed quote store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

const (
	// DefaultTable holds one row per quote.
	DefaultTable = "daily_quotes"

	// HealthName is the health check name of the store.
	HealthName = "quote-store"

	// uniqueViolation is the SQLSTATE for a unique constraint violation.
	uniqueViolation = "23505"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN            string
	Table          string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// pool is the subset of *pgxpool.Pool the store uses.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// QuoteStore implements ports.QuoteStore on a Postgres table.
type QuoteStore struct {
	pool   pool
	table  string
	logger *slog.Logger

	findSQL   string
	listSQL   string
	insertSQL string
}

// New connects to Postgres and returns a store. The connection is verified
// with a ping before returning.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*QuoteStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, domain.NewUnavailableError(HealthName, fmt.Sprintf("connect postgres: %v", err))
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, domain.NewUnavailableError(HealthName, fmt.Sprintf("ping postgres: %v", err))
	}

	store, err := NewWithPool(p, cfg.Table, logger)
	if err != nil {
		p.Close()
		return nil, err
	}

	store.logger.Info("connected to postgres",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)

	return store, nil
}

// NewWithPool constructs a store from an existing pool.
func NewWithPool(p pool, table string, logger *slog.Logger) (*QuoteStore, error) {
	if p == nil {
		return nil, errors.New("pool is required")
	}

	if table == "" {
		table = DefaultTable
	}

	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	if logger == nil {
		logger = slog.Default()
	}

	const columns = "month, day, year, quote, url, created_at, updated_at"

	return &QuoteStore{
		pool:   p,
		table:  table,
		logger: logger.With(slog.String("component", "postgres.QuoteStore")),

		findSQL: fmt.Sprintf(
			"SELECT %s FROM %s WHERE month = $1 AND day = $2 AND year = $3", columns, table),
		listSQL: fmt.Sprintf(
			"SELECT %s FROM %s WHERE month = $1 AND day = $2 ORDER BY year", columns, table),
		insertSQL: fmt.Sprintf(
			"INSERT INTO %s (month, day, year, quote, url) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at",
			table),
	}, nil
}

// EnsureSchema creates the quote table and its indexes if they do not exist.
func (s *QuoteStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         BIGSERIAL PRIMARY KEY,
	month      TEXT        NOT NULL,
	day        CHAR(2)     NOT NULL,
	year       INTEGER     NOT NULL,
	quote      TEXT        NOT NULL CHECK (quote <> ''),
	url        TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT %s_month_day_year_key UNIQUE (month, day, year)
)`, s.table, s.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_month_day_idx ON %s (month, day)", s.table, s.table),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	s.logger.DebugContext(ctx, "schema ensured", slog.String("table", s.table))

	return nil
}

// FindByKey returns the quote stored under key, or a not found error.
func (s *QuoteStore) FindByKey(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error) {
	q, err := scanQuote(s.pool.QueryRow(ctx, s.findSQL, key.Month, key.Day, key.Year))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewQuoteNotFoundError(key)
	}

	if err != nil {
		return nil, fmt.Errorf("find quote %s: %w", key, err)
	}

	return q, nil
}

// ListByMonthDay returns every stored quote for month and day, oldest year first.
func (s *QuoteStore) ListByMonthDay(ctx context.Context, month, day string) ([]*domain.Quote, error) {
	rows, err := s.pool.Query(ctx, s.listSQL, month, day)
	if err != nil {
		return nil, fmt.Errorf("list quotes %s-%s: %w", month, day, err)
	}
	defer rows.Close()

	var quotes []*domain.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}

		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes %s-%s: %w", month, day, err)
	}

	return quotes, nil
}

// Insert stores q and sets its timestamps. A quote already stored under the
// same key yields a conflict error.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.Quote) error {
	err := s.pool.QueryRow(ctx, s.insertSQL, q.Month, q.Day, q.Year, q.Text, q.URL).
		Scan(&q.CreatedAt, &q.UpdatedAt)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.NewDuplicateQuoteError(q.Key(), err)
	}

	return fmt.Errorf("insert quote %s: %w", q.Key(), err)
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (s *QuoteStore) Name() string {
	return HealthName
}

// Check pings the database.
// Implements ports.HealthChecker.
func (s *QuoteStore) Check(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return domain.NewUnavailableError(HealthName, err.Error())
	}

	return nil
}

// Close releases the pool.
func (s *QuoteStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote

	if err := row.Scan(&q.Month, &q.Day, &q.Year, &q.Text, &q.URL, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}

	return &q, nil
}
