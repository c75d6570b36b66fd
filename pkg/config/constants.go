package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "shoplane"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, tooling).
const (
	EnvAppEnv          = "SHOPLANE_APP_ENV"
	EnvPort            = "SHOPLANE_APP_PORT"
	EnvStorageDriver   = "SHOPLANE_STORAGE_DRIVER"
	EnvDBDSN           = "SHOPLANE_DB_DSN"
	EnvRedisURL        = "SHOPLANE_REDIS_URL"
	EnvUpstreamBaseURL = "SHOPLANE_UPSTREAM_BASE_URL"
	EnvSessionSecret   = "SHOPLANE_SESSION_SECRET"
	EnvSessionIssuer   = "SHOPLANE_SESSION_ISSUER"
	EnvTaxRatePercent  = "SHOPLANE_TAX_RATE_PERCENT"
	EnvCurrency        = "SHOPLANE_CURRENCY"
)

// Storage driver values accepted by StorageConfig.Driver.
const (
	StorageDriverRedis    = "redis"
	StorageDriverDatabase = "database"
)
