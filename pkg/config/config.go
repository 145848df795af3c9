package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Firebase     FirebaseConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Reports      ReportsConfig
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
	Env          string `envconfig:"PHARMACY_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMACY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PHARMACY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMACY_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"PHARMACY_LOG_FORMAT" default:"json"`
	CORSOrigins  string `envconfig:"PHARMACY_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the configured CORS origins.
func (a AppConfig) AllowedOrigins() []string {
	out := []string{}
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"PHARMACY_DB_DSN"`
	Driver string `envconfig:"PHARMACY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHARMACY_DB_HOST"`
	LegacyPort     int    `envconfig:"PHARMACY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHARMACY_DB_USER"`
	LegacyPassword string `envconfig:"PHARMACY_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHARMACY_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHARMACY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"PHARMACY_SQLITE_PATH" default:"pharmacy.db"`

	MaxOpenConns    int           `envconfig:"PHARMACY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMACY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMACY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMACY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PHARMACY_REDIS_URL"`
	Address      string        `envconfig:"PHARMACY_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMACY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMACY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMACY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHARMACY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHARMACY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMACY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMACY_REDIS_WRITE_TIMEOUT" default:"5s"`
	// StatsCacheTTL bounds how stale the public storefront counters may be.
	StatsCacheTTL time.Duration `envconfig:"PHARMACY_REDIS_STATS_CACHE_TTL" default:"60s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig drives the local identity tokens used outside production.
type JWTConfig struct {
	Secret            string `envconfig:"PHARMACY_JWT_SECRET"`
	Issuer            string `envconfig:"PHARMACY_JWT_ISSUER" default:"pharmacy-local"`
	ExpirationMinutes int    `envconfig:"PHARMACY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FirebaseConfig struct {
	ProjectID       string `envconfig:"PHARMACY_FIREBASE_PROJECT_ID"`
	CredentialsJSON string `envconfig:"PHARMACY_FIREBASE_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"PHARMACY_FIREBASE_CREDENTIALS_FILE"`
}

// Enabled reports whether the Firebase verifier can be constructed.
func (f FirebaseConfig) Enabled() bool {
	return strings.TrimSpace(f.ProjectID) != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"PHARMACY_RATE_LIMIT_RPS" default:"20"`
	Burst             int           `envconfig:"PHARMACY_RATE_LIMIT_BURST" default:"40"`
	LoginWindow       time.Duration `envconfig:"PHARMACY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit      int           `envconfig:"PHARMACY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PHARMACY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PHARMACY_AUTO_MIGRATE" default:"false"`
	DevAuth     bool `envconfig:"PHARMACY_DEV_AUTH" default:"false"`
}

type StripeConfig struct {
	APIKey          string `envconfig:"PHARMACY_STRIPE_API_KEY"`
	Secret          string `envconfig:"PHARMACY_STRIPE_WEBHOOK_SECRET"`
	Env             string `envconfig:"PHARMACY_STRIPE_ENV" default:"test"`
	DefaultCurrency string `envconfig:"PHARMACY_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"PHARMACY_GCP_PROJECT_ID"`
	DomainTopic string `envconfig:"PHARMACY_PUBSUB_DOMAIN_TOPIC"`
}

// Enabled reports whether domain events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.DomainTopic) != ""
}

type SendgridConfig struct {
	APIKey      string `envconfig:"PHARMACY_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"PHARMACY_SENDGRID_FROM_EMAIL" default:"no-reply@pharmacy.local"`
	FromName    string `envconfig:"PHARMACY_SENDGRID_FROM_NAME" default:"Pharmacy"`
}

// Enabled reports whether receipts can be delivered.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type ReportsConfig struct {
	TopMedicines int `envconfig:"PHARMACY_REPORTS_TOP_MEDICINES" default:"20"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
