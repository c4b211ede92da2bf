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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	Sweeper      SweeperConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CARTRESERVE_APP_ENV" required:"true"`
	Port         string   `envconfig:"CARTRESERVE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CARTRESERVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CARTRESERVE_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the storefront origins allowed to call the API.
	CORSOrigins  []string `envconfig:"CARTRESERVE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind        string `envconfig:"CARTRESERVE_SERVICE_KIND" default:"api"`
	// MetricsPort is where background workers expose /metrics; empty disables it.
	MetricsPort string `envconfig:"CARTRESERVE_WORKER_METRICS_PORT" default:"9091"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTRESERVE_DB_DSN"`
	Driver string `envconfig:"CARTRESERVE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CARTRESERVE_DB_HOST"`
	Port     int    `envconfig:"CARTRESERVE_DB_PORT" default:"5432"`
	User     string `envconfig:"CARTRESERVE_DB_USER"`
	Password string `envconfig:"CARTRESERVE_DB_PASSWORD"`
	Name     string `envconfig:"CARTRESERVE_DB_NAME"`
	SSLMode  string `envconfig:"CARTRESERVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTRESERVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTRESERVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTRESERVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTRESERVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTRESERVE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"CARTRESERVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTRESERVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTRESERVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTRESERVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTRESERVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTRESERVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTRESERVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig signs the cart session tokens handed to anonymous shoppers.
type JWTConfig struct {
	Secret        string `envconfig:"CARTRESERVE_JWT_SECRET" required:"true"`
	Issuer        string `envconfig:"CARTRESERVE_JWT_ISSUER" default:"cartreserve"`
	SessionTTLMin int    `envconfig:"CARTRESERVE_SESSION_TTL_MINUTES" default:"20160"`
}

// SessionTTL is both the token lifetime and the side-channel key TTL.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMin <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMin) * time.Minute
}

type CartConfig struct {
	HoldWindow      time.Duration `envconfig:"CARTRESERVE_CART_HOLD_WINDOW" default:"2m"`
	CheckoutWindow  time.Duration `envconfig:"CARTRESERVE_CART_CHECKOUT_WINDOW" default:"45m"`
	MaxLineQuantity int           `envconfig:"CARTRESERVE_CART_MAX_LINE_QUANTITY" default:"99"`
	MaxAttempts     int           `envconfig:"CARTRESERVE_CART_MAX_ATTEMPTS" default:"3"`
}

func (c CartConfig) validate() error {
	if c.HoldWindow <= 0 || c.CheckoutWindow <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvCartHoldWindow, EnvCartCheckoutWindow)
	}
	if c.MaxLineQuantity < 1 {
		return fmt.Errorf("%s must be at least 1", EnvCartMaxLineQty)
	}
	return nil
}

type SweeperConfig struct {
	Interval  time.Duration `envconfig:"CARTRESERVE_SWEEP_INTERVAL" default:"10s"`
	LockTTL   time.Duration `envconfig:"CARTRESERVE_SWEEP_LOCK_TTL" default:"30s"`
	BatchSize int           `envconfig:"CARTRESERVE_SWEEP_BATCH_SIZE" default:"500"`
	// OutboxRetention is how long published outbox rows are kept.
	OutboxRetention time.Duration `envconfig:"CARTRESERVE_OUTBOX_RETENTION" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTRESERVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTRESERVE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"CARTRESERVE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"CARTRESERVE_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	CartTopic string `envconfig:"CARTRESERVE_PUBSUB_CART_TOPIC" default:"cart-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CARTRESERVE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CARTRESERVE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CARTRESERVE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = "sqlite"
		db.DSN = "file:cartreserve.db?cache=shared"
		return nil
	}

	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	missing := []string{}
	for _, env := range hostDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
