package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Pricing  PricingConfig
	Promo    PromoConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.TaxRate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the durable key-value backend holding carts and wishlists.
type StorageConfig struct {
	Driver      string `envconfig:"SHOPLANE_STORAGE_DRIVER" default:"redis"`
	AutoMigrate bool   `envconfig:"SHOPLANE_AUTO_MIGRATE" default:"false"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverRedis, StorageDriverDatabase:
		return nil
	}
	return fmt.Errorf("unknown storage driver %q (want %s or %s)", s.Driver, StorageDriverRedis, StorageDriverDatabase)
}

// IsDatabase reports whether carts persist through the relational backend.
func (s StorageConfig) IsDatabase() bool {
	return strings.EqualFold(strings.TrimSpace(s.Driver), StorageDriverDatabase)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLANE_DB_DSN"`
	Driver string `envconfig:"SHOPLANE_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"SHOPLANE_SQLITE_PATH" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"SHOPLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UseSQLite reports whether the sqlite driver is selected.
func (db DBConfig) UseSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLANE_REDIS_URL"`
	Address      string        `envconfig:"SHOPLANE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// UpstreamConfig points at the commerce platform every remote call goes to.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"SHOPLANE_UPSTREAM_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"SHOPLANE_UPSTREAM_API_KEY"`
	Timeout time.Duration `envconfig:"SHOPLANE_UPSTREAM_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	Secret            string `envconfig:"SHOPLANE_SESSION_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPLANE_SESSION_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPLANE_SESSION_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(s.ExpirationMinutes) * time.Minute
}

// PricingConfig carries the locally applied pieces of the order summary.
type PricingConfig struct {
	TaxRatePercent string `envconfig:"SHOPLANE_TAX_RATE_PERCENT" default:"0"`
	Currency       string `envconfig:"SHOPLANE_CURRENCY" default:"USD"`
}

// TaxRate parses the configured percentage into a decimal rate.
func (p PricingConfig) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRatePercent))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing tax rate percent %q: %w", p.TaxRatePercent, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate percent must not be negative")
	}
	return rate, nil
}

type PromoConfig struct {
	RefreshInterval time.Duration `envconfig:"SHOPLANE_PROMO_REFRESH_INTERVAL" default:"15m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SHOPLANE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
