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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"ARSCODE_APP_ENV" required:"true"`
	Port         string `envconfig:"ARSCODE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARSCODE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARSCODE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARSCODE_DB_DSN"`
	Driver string `envconfig:"ARSCODE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ARSCODE_DB_HOST"`
	Port     int    `envconfig:"ARSCODE_DB_PORT" default:"5432"`
	User     string `envconfig:"ARSCODE_DB_USER"`
	Password string `envconfig:"ARSCODE_DB_PASSWORD"`
	Name     string `envconfig:"ARSCODE_DB_NAME"`
	SSLMode  string `envconfig:"ARSCODE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARSCODE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARSCODE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARSCODE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARSCODE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARSCODE_REDIS_URL"`
	Address      string        `envconfig:"ARSCODE_REDIS_ADDR"`
	Password     string        `envconfig:"ARSCODE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARSCODE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARSCODE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARSCODE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARSCODE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARSCODE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARSCODE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARSCODE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARSCODE_JWT_ISSUER" default:"arscode"`
	ExpirationMinutes int    `envconfig:"ARSCODE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARSCODE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARSCODE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARSCODE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARSCODE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARSCODE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ARSCODE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ARSCODE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ARSCODE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ARSCODE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ARSCODE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ARSCODE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ARSCODE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ARSCODE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
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
