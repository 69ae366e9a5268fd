// Package config defines the application configuration, loaded from the
// environment, and the Deps bundle handed to services.
package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// DB holds database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Ledger selects the ledger store backend.
type Ledger struct {
	// Driver is "postgres" or "memory". The memory driver exists for local
	// development and tests, never as a silent fallback.
	Driver string `envconfig:"DRIVER" default:"postgres"`
}

// Redis holds connection settings for the score cache.
type Redis struct {
	URL          string        `envconfig:"URL"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"tokenx:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// Kafka holds event publication settings. Publication is enabled only when
// brokers are configured.
type Kafka struct {
	Brokers string `envconfig:"BROKERS"`
	Topic   string `envconfig:"TOPIC" default:"tokenx.events"`
}

// RateLimit configures the HTTP-level request limiter.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Swap configures the swap executor and the oracle nudge curve.
type Swap struct {
	Enabled           bool            `envconfig:"ENABLED" default:"true"`
	MinScore          float64         `envconfig:"MIN_SCORE" default:"50"`
	DailyLimit        int64           `envconfig:"DAILY_LIMIT" default:"1000"`
	DailyLimitPerUser int64           `envconfig:"DAILY_LIMIT_PER_USER" default:"10"`
	Window            time.Duration   `envconfig:"WINDOW" default:"24h"`
	MaxStepPerTrade   decimal.Decimal `envconfig:"MAX_STEP_PER_TRADE" default:"0.05"`
	ReversionFactor   decimal.Decimal `envconfig:"REVERSION_FACTOR" default:"0.1"`
	VolumeSmoothing   decimal.Decimal `envconfig:"VOLUME_SMOOTHING" default:"0.2"`
}

// Staking configures the staking manager.
type Staking struct {
	Enabled bool `envconfig:"ENABLED" default:"true"`
	// OperatorKey authorizes bulk yield processing. Empty disables the
	// endpoint entirely.
	OperatorKey string `envconfig:"OPERATOR_KEY"`
}

// Eligibility configures the score lookup and its cache.
type Eligibility struct {
	DefaultScore float64       `envconfig:"DEFAULT_SCORE" default:"0"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// Log holds logger settings.
type Log struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
	Prefix string `envconfig:"PREFIX" default:"[tokenx]"`
}

// Server holds HTTP server settings.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// App is the root configuration.
type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Ledger      *Ledger      `envconfig:"LEDGER"`
	Redis       *Redis       `envconfig:"REDIS"`
	Kafka       *Kafka       `envconfig:"KAFKA"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	Swap        *Swap        `envconfig:"SWAP"`
	Staking     *Staking     `envconfig:"STAKING"`
	Eligibility *Eligibility `envconfig:"ELIGIBILITY"`
}
