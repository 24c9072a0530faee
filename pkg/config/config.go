package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Invitations   InvitationsConfig
	Email         EmailConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Photos        PhotosConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"FRAMEWELL_APP_ENV" required:"true"`
	Port         string `envconfig:"FRAMEWELL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRAMEWELL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRAMEWELL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FRAMEWELL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRAMEWELL_DB_DSN"`
	Driver string `envconfig:"FRAMEWELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRAMEWELL_DB_HOST"`
	LegacyPort     int    `envconfig:"FRAMEWELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRAMEWELL_DB_USER"`
	LegacyPassword string `envconfig:"FRAMEWELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRAMEWELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRAMEWELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRAMEWELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRAMEWELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRAMEWELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRAMEWELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRAMEWELL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRAMEWELL_REDIS_ADDR"`
	Password     string        `envconfig:"FRAMEWELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRAMEWELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRAMEWELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRAMEWELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRAMEWELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRAMEWELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRAMEWELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FRAMEWELL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FRAMEWELL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FRAMEWELL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FRAMEWELL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FRAMEWELL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FRAMEWELL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FRAMEWELL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FRAMEWELL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FRAMEWELL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FRAMEWELL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FRAMEWELL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRAMEWELL_AUTO_MIGRATE" default:"false"`
}

// InvitationsConfig carries the invitation-lifecycle knobs. Email matching is
// exact by default; NormalizeEmail switches redemption to a case-folded,
// trimmed comparison.
type InvitationsConfig struct {
	MemberTTL      time.Duration `envconfig:"FRAMEWELL_INVITES_MEMBER_TTL" default:"168h"`
	ClientTTL      time.Duration `envconfig:"FRAMEWELL_INVITES_CLIENT_TTL" default:"720h"`
	NormalizeEmail bool          `envconfig:"FRAMEWELL_INVITES_NORMALIZE_EMAIL" default:"false"`
	RedeemBaseURL  string        `envconfig:"FRAMEWELL_INVITES_REDEEM_BASE_URL" default:"https://app.framewell.io/invitations"`
}

type EmailConfig struct {
	APIKey      string `envconfig:"FRAMEWELL_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"FRAMEWELL_SENDGRID_FROM_EMAIL" default:"no-reply@framewell.io"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FRAMEWELL_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FRAMEWELL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FRAMEWELL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"FRAMEWELL_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"FRAMEWELL_GCS_UPLOAD_URL_EXPIRY" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"FRAMEWELL_GCS_DOWNLOAD_URL_EXPIRY" required:"true"`
}

type PhotosConfig struct {
	MaxUploadMB int `envconfig:"FRAMEWELL_PHOTOS_MAX_UPLOAD_MB" default:"200"`
}

type PubSubConfig struct {
	PhotosTopic        string `envconfig:"FRAMEWELL_PUBSUB_PHOTOS_TOPIC" required:"true"`
	PhotosSubscription string `envconfig:"FRAMEWELL_PUBSUB_PHOTOS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FRAMEWELL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FRAMEWELL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FRAMEWELL_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
