package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TRIPLEDGER"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv     = "TRIPLEDGER_APP_ENV"
	EnvPort       = "TRIPLEDGER_APP_PORT"
	EnvDBDSN      = "TRIPLEDGER_DB_DSN"
	EnvDBHost     = "TRIPLEDGER_DB_HOST"
	EnvDBUser     = "TRIPLEDGER_DB_USER"
	EnvDBName     = "TRIPLEDGER_DB_NAME"
	EnvRedisURL   = "TRIPLEDGER_REDIS_URL"
	EnvJWTSecret  = "TRIPLEDGER_JWT_SECRET"
	EnvJWTIssuer  = "TRIPLEDGER_JWT_ISSUER"
	EnvJWTExpMins = "TRIPLEDGER_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRIPLEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"TRIPLEDGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRIPLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIPLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRIPLEDGER_DB_DSN"`
	Driver string `envconfig:"TRIPLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRIPLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"TRIPLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRIPLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"TRIPLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRIPLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRIPLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRIPLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRIPLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRIPLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRIPLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIPLEDGER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRIPLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"TRIPLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIPLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIPLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRIPLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRIPLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIPLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRIPLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRIPLEDGER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRIPLEDGER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRIPLEDGER_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRIPLEDGER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRIPLEDGER_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"TRIPLEDGER_IDEMPOTENCY_TTL" default:"24h"`
}

// RateLimitConfig throttles authenticated API traffic per user. A zero limit
// or window disables the limiter.
type RateLimitConfig struct {
	Limit  int           `envconfig:"TRIPLEDGER_RATE_LIMIT_REQUESTS" default:"120"`
	Window time.Duration `envconfig:"TRIPLEDGER_RATE_LIMIT_WINDOW" default:"1m"`
}

func (r RateLimitConfig) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}

	// The SQLite path carries its own file-based DSN default for local runs.
	if useSQLite || strings.EqualFold(db.Driver, "sqlite") {
		db.Driver = "sqlite"
		db.DSN = "file:tripledger.db?_pragma=foreign_keys(1)"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
