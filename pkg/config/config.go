package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "shopbot"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPBOT_DB_DSN"
	EnvDBHost = "SHOPBOT_DB_HOST"
	EnvDBUser = "SHOPBOT_DB_USER"
	EnvDBName = "SHOPBOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Authz        AuthzConfig
	Escrow       EscrowConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Notify       NotifyConfig
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
	Env          string `envconfig:"SHOPBOT_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPBOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPBOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPBOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPBOT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPBOT_DB_DSN"`
	Driver string `envconfig:"SHOPBOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPBOT_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPBOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPBOT_DB_USER"`
	LegacyPassword string `envconfig:"SHOPBOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPBOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPBOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPBOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPBOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPBOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPBOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPBOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPBOT_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPBOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPBOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPBOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPBOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPBOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPBOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPBOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPBOT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPBOT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPBOT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the admin token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthzConfig struct {
	OwnerUserID string `envconfig:"SHOPBOT_OWNER_USER_ID" required:"true"`
}

// EscrowConfig carries the transaction thresholds that shape how a
// purchase moves through the escrow pipeline.
type EscrowConfig struct {
	ProofRequiredAbove   decimal.Decimal `envconfig:"SHOPBOT_ESCROW_PROOF_REQUIRED_ABOVE" default:"50"`
	HighPriorityAbove    decimal.Decimal `envconfig:"SHOPBOT_ESCROW_HIGH_PRIORITY_ABOVE" default:"100"`
	ReminderMaxCount     int             `envconfig:"SHOPBOT_ESCROW_REMINDER_MAX_COUNT" default:"3"`
	StaleAfter           time.Duration   `envconfig:"SHOPBOT_ESCROW_STALE_AFTER" default:"24h"`
	ReminderScanInterval time.Duration   `envconfig:"SHOPBOT_ESCROW_REMINDER_SCAN_INTERVAL" default:"2h"`
	ReconcileGracePeriod time.Duration   `envconfig:"SHOPBOT_ESCROW_RECONCILE_GRACE" default:"15m"`
	LowStockThreshold    int             `envconfig:"SHOPBOT_ESCROW_LOW_STOCK_THRESHOLD" default:"3"`
}

type MaintenanceConfig struct {
	ListingSweepInterval   time.Duration `envconfig:"SHOPBOT_MAINT_LISTING_SWEEP_INTERVAL" default:"6h"`
	PendingExpireAfter     time.Duration `envconfig:"SHOPBOT_MAINT_PENDING_EXPIRE_AFTER" default:"720h"`
	SoldOutArchiveAfter    time.Duration `envconfig:"SHOPBOT_MAINT_SOLD_OUT_ARCHIVE_AFTER" default:"168h"`
	TerminalListingMaxAge  time.Duration `envconfig:"SHOPBOT_MAINT_TERMINAL_LISTING_MAX_AGE" default:"168h"`
	CompletedTxMaxAge      time.Duration `envconfig:"SHOPBOT_MAINT_COMPLETED_TX_MAX_AGE" default:"720h"`
	DailyStatsMaxAge       time.Duration `envconfig:"SHOPBOT_MAINT_DAILY_STATS_MAX_AGE" default:"2160h"`
	CleanupInterval        time.Duration `envconfig:"SHOPBOT_MAINT_CLEANUP_INTERVAL" default:"168h"`
	StatsRollupInterval    time.Duration `envconfig:"SHOPBOT_MAINT_STATS_ROLLUP_INTERVAL" default:"24h"`
	LowStockScanInterval   time.Duration `envconfig:"SHOPBOT_MAINT_LOW_STOCK_SCAN_INTERVAL" default:"4h"`
	TrendWindowDays        int           `envconfig:"SHOPBOT_MAINT_TREND_WINDOW_DAYS" default:"7"`
	ReconcileScanInterval  time.Duration `envconfig:"SHOPBOT_MAINT_RECONCILE_SCAN_INTERVAL" default:"30m"`
	CronLockTTL            time.Duration `envconfig:"SHOPBOT_MAINT_CRON_LOCK_TTL" default:"10m"`
	CronTickInterval       time.Duration `envconfig:"SHOPBOT_MAINT_CRON_TICK_INTERVAL" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPBOT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPBOT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOPBOT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SHOPBOT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOPBOT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"SHOPBOT_PUBSUB_NOTIFICATION_TOPIC" default:"shopbot-notification-events"`
	NotificationSubscription string `envconfig:"SHOPBOT_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type NotifyConfig struct {
	BatchSize      int `envconfig:"SHOPBOT_NOTIFY_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHOPBOT_NOTIFY_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHOPBOT_NOTIFY_MAX_ATTEMPTS" default:"10"`
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
