// Package config loads the service settings with koanf. Sources layer as
// defaults, configs/base.yaml, configs/<profile>.yaml, MONGO_URL, then
// APP_* variables; later sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultAppName    = "daily-quote"
	DefaultServerPort = 8080

	// DefaultUpstreamBaseURL serves one quote page per date under
	// /<month>-<day>-<year>.
	DefaultUpstreamBaseURL = "https://isha.sadhguru.org/en/wisdom/quotes/date"

	// DefaultQuotesFirstYear is the earliest year the upstream publishes.
	DefaultQuotesFirstYear = 2014
)

const (
	envPrefix    = "APP_"
	legacyDSNEnv = "MONGO_URL"
	configDir    = "configs"
)

// Config is the root of the settings tree.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Upstream  UpstreamConfig  `koanf:"upstream"  validate:"required"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Quotes    QuotesConfig    `koanf:"quotes"    validate:"required"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig tunes the HTTP listener. RequestTimeout bounds /api requests.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig adds a rotated JSON copy of every log line.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig points the OTLP gRPC exporters at a collector.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig is shared by outbound HTTP clients.
type ClientConfig struct {
	MaxBodyBytes   int64                `koanf:"max_body_bytes"  validate:"required,min=1024"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// UpstreamConfig describes the site quote pages are scraped from.
type UpstreamConfig struct {
	Name      string        `koanf:"name"       validate:"required"`
	BaseURL   string        `koanf:"base_url"   validate:"required,url"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
	Timeout   time.Duration `koanf:"timeout"    validate:"required,min=100ms"`
}

// StoreConfig selects and tunes the quote store. Database and Collection
// apply to MongoDB, Table to Postgres.
type StoreConfig struct {
	DSN            string        `koanf:"dsn"             validate:"required,dsn_scheme"`
	Database       string        `koanf:"database"        validate:"required"`
	Collection     string        `koanf:"collection"      validate:"required"`
	Table          string        `koanf:"table"           validate:"required"`
	MaxConns       int32         `koanf:"max_conns"       validate:"required,min=1,max=500"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"required,min=100ms"`
	EnsureSchema   bool          `koanf:"ensure_schema"`
}

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"
)

// Backend names the store the DSN scheme selects, or "" for an unsupported
// scheme. Schemes compare case-insensitively.
func (s StoreConfig) Backend() string {
	scheme, _, ok := strings.Cut(s.DSN, "://")
	if !ok {
		return ""
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return StoreBackendPostgres
	case "mongodb", "mongodb+srv":
		return StoreBackendMongo
	}

	return ""
}

type QuotesConfig struct {
	Years            YearsConfig `koanf:"years"`
	FetchConcurrency int         `koanf:"fetch_concurrency" validate:"required,min=1,max=64"`
}

// YearsConfig bounds across-years lookups. To of zero means the current year.
type YearsConfig struct {
	From int `koanf:"from" validate:"required,min=1900,max=9999"`
	To   int `koanf:"to"   validate:"omitempty,gtefield=From,max=9999"`
}

// defaults is the bottom layer. Every key an APP_ variable may set must be
// present here so envKeyMapper can resolve underscores inside key names.
func defaults() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":        DefaultAppName,
			"version":     "dev",
			"environment": "local",
		},
		"server": map[string]any{
			"port":             DefaultServerPort,
			"host":             "0.0.0.0",
			"read_timeout":     "30s",
			"write_timeout":    "90s",
			"idle_timeout":     "120s",
			"shutdown_timeout": "10s",
			"request_timeout":  "60s",
			"max_request_size": 1 << 20,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
			"file": map[string]any{
				"enabled":     false,
				"path":        "./logs/daily-quote.log",
				"max_size":    100,
				"max_backups": 3,
				"max_age":     28,
				"compress":    true,
			},
		},
		"telemetry": map[string]any{
			"enabled":       false,
			"endpoint":      "",
			"service_name":  DefaultAppName,
			"sampling_rate": 1.0,
		},
		"client": map[string]any{
			"max_body_bytes": 4 << 20,
			"circuit_breaker": map[string]any{
				"max_failures":    5,
				"timeout":         "30s",
				"half_open_limit": 3,
			},
			"transport": map[string]any{
				"max_idle_conns":          100,
				"max_idle_conns_per_host": 10,
				"idle_conn_timeout":       "90s",
			},
		},
		"upstream": map[string]any{
			"name":       "quote-upstream",
			"base_url":   DefaultUpstreamBaseURL,
			"user_agent": "Mozilla/5.0",
			"timeout":    "10s",
		},
		"store": map[string]any{
			"dsn":             "",
			"database":        "sadhguru_quotes",
			"collection":      "quotes",
			"table":           "daily_quotes",
			"max_conns":       10,
			"connect_timeout": "10s",
			"ensure_schema":   true,
		},
		"quotes": map[string]any{
			"years":             map[string]any{"from": DefaultQuotesFirstYear, "to": 0},
			"fetch_concurrency": 4,
		},
	}
}

// layer is one configuration source.
type layer struct {
	name string
	load func(k *koanf.Koanf) error
}

// Load builds the config for profile. An empty profile reads only
// configs/base.yaml; missing files are skipped. Load does not validate.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	layers := []layer{
		{"defaults", func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(defaults(), "."), nil)
		}},
		{"base config", yamlLayer(filepath.Join(configDir, "base.yaml"))},
	}

	if profile != "" {
		layers = append(layers, layer{
			fmt.Sprintf("profile config %q", profile),
			yamlLayer(filepath.Join(configDir, profile+".yaml")),
		})
	}

	layers = append(layers,
		layer{legacyDSNEnv, func(k *koanf.Koanf) error {
			dsn := os.Getenv(legacyDSNEnv)
			if dsn == "" {
				return nil
			}

			return k.Set("store.dsn", dsn)
		}},
		layer{"env vars", func(k *koanf.Koanf) error {
			return k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil)
		}},
	)

	for _, l := range layers {
		if err := l.load(k); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// yamlLayer loads path, or nothing when the file does not exist.
func yamlLayer(path string) func(*koanf.Koanf) error {
	return func(k *koanf.Koanf) error {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return k.Load(file.Provider(path), yaml.Parser())
	}
}

// envKeyMapper resolves APP_QUOTES_FETCH_CONCURRENCY to the known key
// "quotes.fetch_concurrency". Names that match no known key have every
// underscore turned into a dot.
func envKeyMapper(known []string) func(string) string {
	lookup := make(map[string]string, len(known))
	for _, key := range known {
		lookup[strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}

	return func(name string) string {
		name = strings.TrimPrefix(name, envPrefix)
		if key, ok := lookup[name]; ok {
			return key
		}

		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}
