package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when resolving variables.
const EnvPrefix = "LAPTOPCARE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LAPTOPCARE_DB_DSN"
	EnvDBHost = "LAPTOPCARE_DB_HOST"
	EnvDBUser = "LAPTOPCARE_DB_USER"
	EnvDBName = "LAPTOPCARE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"LAPTOPCARE_APP_ENV" required:"true"`
	Port         string `envconfig:"LAPTOPCARE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LAPTOPCARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LAPTOPCARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LAPTOPCARE_DB_DSN"`
	Driver string `envconfig:"LAPTOPCARE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LAPTOPCARE_DB_HOST"`
	LegacyPort     int    `envconfig:"LAPTOPCARE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LAPTOPCARE_DB_USER"`
	LegacyPassword string `envconfig:"LAPTOPCARE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LAPTOPCARE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LAPTOPCARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAPTOPCARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAPTOPCARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAPTOPCARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAPTOPCARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	// Optional: when neither URL nor Address is set, the API falls back to the
	// in-process token revocation set and skips auth rate limiting.
	URL          string        `envconfig:"LAPTOPCARE_REDIS_URL"`
	Address      string        `envconfig:"LAPTOPCARE_REDIS_ADDR"`
	Password     string        `envconfig:"LAPTOPCARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAPTOPCARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAPTOPCARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAPTOPCARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAPTOPCARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAPTOPCARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAPTOPCARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"LAPTOPCARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LAPTOPCARE_JWT_ISSUER" default:"laptopcare"`
	ExpirationMinutes int    `envconfig:"LAPTOPCARE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LAPTOPCARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LAPTOPCARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LAPTOPCARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LAPTOPCARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LAPTOPCARE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LAPTOPCARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	Origins []string `envconfig:"LAPTOPCARE_CORS_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LAPTOPCARE_AUTO_MIGRATE" default:"false"`
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
