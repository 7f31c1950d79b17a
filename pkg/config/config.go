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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	FrontOfHouse FrontOfHouseConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RESTAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"RESTAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RESTAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RESTAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RESTAUS_DB_DSN"`
	Driver string `envconfig:"RESTAUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RESTAUS_DB_HOST"`
	LegacyPort     int    `envconfig:"RESTAUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RESTAUS_DB_USER"`
	LegacyPassword string `envconfig:"RESTAUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RESTAUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RESTAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RESTAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RESTAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RESTAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RESTAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RESTAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RESTAUS_REDIS_ADDR"`
	Password     string        `envconfig:"RESTAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RESTAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RESTAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RESTAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RESTAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RESTAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RESTAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RESTAUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RESTAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RESTAUS_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RESTAUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RESTAUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RESTAUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RESTAUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RESTAUS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RESTAUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RESTAUS_AUTO_MIGRATE" default:"false"`
	// DailyStockReset enables the scheduled replenishment job; the ledger
	// itself never replenishes stock.
	DailyStockReset bool `envconfig:"RESTAUS_DAILY_STOCK_RESET" default:"false"`
}

// FrontOfHouseConfig tunes the dining-room projections.
type FrontOfHouseConfig struct {
	// TableWarningAfter is how long a delivered order may stay unpaid before
	// the table listing raises the warning flag.
	TableWarningAfter time.Duration `envconfig:"RESTAUS_TABLE_WARNING_AFTER" default:"5m"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RESTAUS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"RESTAUS_PUBSUB_ORDERS_TOPIC" default:"restaus-order-events"`
	OrdersSubscription string `envconfig:"RESTAUS_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RESTAUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RESTAUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RESTAUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"RESTAUS_OUTBOX_RETENTION_DAYS" default:"14"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RESTAUS_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"RESTAUS_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
