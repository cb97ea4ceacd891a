package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Credit       CreditConfig
	Orders       OrdersConfig
	Security     SecurityConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Credit.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CASAGRANDE_APP_ENV" required:"true"`
	Port         string `envconfig:"CASAGRANDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CASAGRANDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CASAGRANDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CASAGRANDE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CASAGRANDE_DB_DSN"`
	Driver string `envconfig:"CASAGRANDE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CASAGRANDE_DB_HOST"`
	LegacyPort     int    `envconfig:"CASAGRANDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CASAGRANDE_DB_USER"`
	LegacyPassword string `envconfig:"CASAGRANDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CASAGRANDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CASAGRANDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CASAGRANDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CASAGRANDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CASAGRANDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CASAGRANDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CASAGRANDE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"CASAGRANDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CASAGRANDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CASAGRANDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CASAGRANDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CASAGRANDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CASAGRANDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CASAGRANDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies bearer tokens minted by the external identity provider.
// The backend never issues or refreshes tokens itself.
type JWTConfig struct {
	VerificationSecret string `envconfig:"CASAGRANDE_JWT_VERIFICATION_SECRET" required:"true"`
	Issuer             string `envconfig:"CASAGRANDE_JWT_ISSUER" required:"true"`
	Audience           string `envconfig:"CASAGRANDE_JWT_AUDIENCE" default:"casagrande-backend"`
}

// CreditConfig carries the credit line policy knobs.
type CreditConfig struct {
	AnnualInterestRate string `envconfig:"CASAGRANDE_CREDIT_ANNUAL_INTEREST_RATE" default:"0.24"`
	DefaultTermDays    int    `envconfig:"CASAGRANDE_CREDIT_DEFAULT_TERM_DAYS" default:"90"`
	MaxRequestAmount   string `envconfig:"CASAGRANDE_CREDIT_MAX_REQUEST_AMOUNT" default:"5000000"`
	MaxTermDays        int    `envconfig:"CASAGRANDE_CREDIT_MAX_TERM_DAYS" default:"365"`
}

func (c CreditConfig) validate() error {
	if _, err := decimal.NewFromString(c.AnnualInterestRate); err != nil {
		return fmt.Errorf("invalid annual interest rate %q: %w", c.AnnualInterestRate, err)
	}
	if _, err := decimal.NewFromString(c.MaxRequestAmount); err != nil {
		return fmt.Errorf("invalid max request amount %q: %w", c.MaxRequestAmount, err)
	}
	if c.DefaultTermDays <= 0 || c.MaxTermDays <= 0 {
		return fmt.Errorf("credit term days must be positive")
	}
	return nil
}

// InterestRate returns the parsed annual rate. validate() runs at load time,
// so the parse cannot fail here.
func (c CreditConfig) InterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.AnnualInterestRate)
	return rate
}

// MaxAmount returns the parsed request ceiling.
func (c CreditConfig) MaxAmount() decimal.Decimal {
	max, _ := decimal.NewFromString(c.MaxRequestAmount)
	return max
}

// OrdersConfig controls the guest order payment window.
type OrdersConfig struct {
	PaymentWindow time.Duration `envconfig:"CASAGRANDE_ORDERS_PAYMENT_WINDOW" default:"48h"`
}

// SecurityConfig tunes the Argon2id hashing of guest access token secrets.
type SecurityConfig struct {
	ArgonMemoryKB    int `envconfig:"CASAGRANDE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CASAGRANDE_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"CASAGRANDE_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"CASAGRANDE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CASAGRANDE_ARGON_KEY_LEN" default:"32"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CASAGRANDE_CRON_INTERVAL" default:"1h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CASAGRANDE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CASAGRANDE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CASAGRANDE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CASAGRANDE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CASAGRANDE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"CASAGRANDE_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"CASAGRANDE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"CASAGRANDE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"CASAGRANDE_PUBSUB_EVENTS_TOPIC" default:"cg-domain-events"`
	EventsSubscription string `envconfig:"CASAGRANDE_PUBSUB_EVENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CASAGRANDE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CASAGRANDE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CASAGRANDE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"CASAGRANDE_OUTBOX_RETENTION_DAYS" default:"30"`
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
