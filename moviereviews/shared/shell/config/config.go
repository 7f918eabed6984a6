package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Review backends.
const (
	ReviewBackendEventStore = "eventstore"
	ReviewBackendRedis      = "redis"
)

// Event store engines.
const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

// Postgres adapters.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"
)

// Append listeners.
const (
	ListenerNotify = "notify"
	ListenerPQ     = "pq"
	ListenerPoll   = "poll"
)

// Metrics backends.
const (
	MetricsPrometheus = "prometheus"
	MetricsOTel       = "otel"
	MetricsNone       = "none"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	Store     StoreConfig     `koanf:"store"`
	Redis     RedisConfig     `koanf:"redis"`
	Feed      FeedConfig      `koanf:"feed"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `koanf:"issuer"     validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"  validate:"gt=0"`
}

// StoreConfig selects where reviews, reactions and viewer events live.
type StoreConfig struct {
	ReviewBackend   string        `koanf:"review_backend"    validate:"oneof=eventstore redis"`
	Engine          string        `koanf:"engine"            validate:"oneof=memory postgres"`
	Adapter         string        `koanf:"adapter"           validate:"oneof=pgx.pool sql.db sqlx.db"`
	DSN             string        `koanf:"dsn"               validate:"required_if=Engine postgres"`
	ReplicaDSN      string        `koanf:"replica_dsn"`
	TableName       string        `koanf:"table_name"        validate:"required"`
	NotifyChannel   string        `koanf:"notify_channel"`
	Listener        string        `koanf:"listener"          validate:"oneof=notify pq poll"`
	PollInterval    time.Duration `koanf:"poll_interval"     validate:"gt=0"`
	EnsureSchema    bool          `koanf:"ensure_schema"`
	MaxConns        int           `koanf:"max_conns"         validate:"gt=0"`
	MinConns        int           `koanf:"min_conns"         validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime" validate:"gt=0"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time" validate:"gt=0"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"   validate:"gt=0"`
}

// RedisConfig configures the redis review backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"       validate:"required_if=Enabled true"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"         validate:"gte=0"`
	KeyPrefix string `koanf:"key_prefix" validate:"required"`
	Channel   string `koanf:"channel"    validate:"required"`
	Enabled   bool   `koanf:"-"`
}

// FeedConfig configures the review feed controller.
type FeedConfig struct {
	RefreshAfterWrite bool `koanf:"refresh_after_write"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	Metrics     string `koanf:"metrics"      validate:"oneof=prometheus otel none"`
	Tracing     bool   `koanf:"tracing"`
	ServiceName string `koanf:"service_name" validate:"required"`
}

// Default returns the built-in defaults. They describe a single-process setup with the in-memory
// event store; only auth.jwt_secret has no default.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "reviewfeed",
			TokenTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			ReviewBackend:   ReviewBackendEventStore,
			Engine:          EngineMemory,
			Adapter:         AdapterPGXPool,
			TableName:       "events",
			NotifyChannel:   "events_appended",
			Listener:        ListenerNotify,
			PollInterval:    time.Second,
			EnsureSchema:    true,
			MaxConns:        8,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "reviewfeed",
			Channel:   "reviewfeed:changes",
		},
		Feed: FeedConfig{
			RefreshAfterWrite: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Metrics:     MetricsPrometheus,
			ServiceName: "reviewfeed",
		},
	}
}

// Validate checks the struct tags and the rules spanning sections.
func (c *Config) Validate() error {
	c.Redis.Enabled = c.Store.ReviewBackend == ReviewBackendRedis

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if c.Store.Engine == EnginePostgres && c.Store.Listener != ListenerPoll && c.Store.NotifyChannel == "" {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("store.notify_channel is required for the %q listener", c.Store.Listener))
	}

	if c.Store.Listener == ListenerNotify && c.Store.Engine == EnginePostgres && c.Store.Adapter != AdapterPGXPool {
		return errors.Join(
			ErrInvalidConfig,
			fmt.Errorf("store.listener %q needs store.adapter %q, got %q", ListenerNotify, AdapterPGXPool, c.Store.Adapter),
		)
	}

	return nil
}

// UsesPostgres reports whether the event store runs on Postgres.
func (c Config) UsesPostgres() bool {
	return c.Store.Engine == EnginePostgres
}
