package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DBDriverPostgres = "postgres"
	DBDriverSqlite   = "sqlite"
)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`
		LogLevel string `mapstructure:"LOG_LEVEL"`
		// TrustProxy takes the client IP from X-Forwarded-For set by a private-range proxy.
		TrustProxy bool `mapstructure:"TRUST_PROXY"`

		DBDriver     string `mapstructure:"DB_DRIVER"`
		DBHost       string `mapstructure:"DB_HOST"`
		DBPort       string `mapstructure:"DB_PORT"`
		DBUser       string `mapstructure:"DB_USER"`
		DBPassword   string `mapstructure:"DB_PASSWORD"`
		DBName       string `mapstructure:"DB_NAME"`
		DBSSLMode    string `mapstructure:"DB_SSL_MODE"`
		DBSqlitePath string `mapstructure:"DB_SQLITE_PATH"`

		GeocodingAPIKey  string        `mapstructure:"GEOCODING_API_KEY"`
		GeocodingBaseURL string        `mapstructure:"GEOCODING_BASE_URL"`
		GeocodingTimeout time.Duration `mapstructure:"GEOCODING_TIMEOUT"`

		TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
		BcryptCost int           `mapstructure:"BCRYPT_COST"`

		RedisAddr       string        `mapstructure:"REDIS_ADDR"`
		RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
		RedisDB         int           `mapstructure:"REDIS_DB"`
		LoginRateLimit  int           `mapstructure:"LOGIN_RATE_LIMIT"`
		LoginRateWindow time.Duration `mapstructure:"LOGIN_RATE_WINDOW"`
	}
)

var envs = []string{
	"HOST", "PORT", "GRPC_PORT", "LOG_LEVEL", "TRUST_PROXY",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "DB_SQLITE_PATH",
	"GEOCODING_API_KEY", "GEOCODING_BASE_URL", "GEOCODING_TIMEOUT",
	"TOKEN_TTL", "BCRYPT_COST",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW",
}

func NewConfig() (*Config, error) {
	// .env is optional, real environment wins
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.Wrap(err, "load .env")
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SHOPMAP")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "1323")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_HOST", "0.0.0.0")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "db")
	v.SetDefault("DB_SSL_MODE", sslModeDisable)
	v.SetDefault("DB_SQLITE_PATH", "shopmap.db")
	v.SetDefault("GEOCODING_API_KEY", "")
	v.SetDefault("GEOCODING_BASE_URL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("GEOCODING_TIMEOUT", 10*time.Second)
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", 14)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)

	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	var err error

	switch cfg.DBSSLMode {
	case sslModeDisable, sslModeRequire:
	default:
		err = multierr.Append(err, errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode)))
	}
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSqlite:
	default:
		err = multierr.Append(err, errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver)))
	}
	if cfg.TokenTTL <= 0 {
		err = multierr.Append(err, errors.New("token TTL must be positive"))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		err = multierr.Append(err, errors.New(fmt.Sprintf("bcrypt cost must be within 4..31: %d", cfg.BcryptCost)))
	}
	if cfg.GeocodingTimeout <= 0 {
		err = multierr.Append(err, errors.New("geocoding timeout must be positive"))
	}
	if cfg.LoginRateLimit < 0 || cfg.LoginRateWindow < 0 {
		err = multierr.Append(err, errors.New("login rate limit settings must not be negative"))
	}

	return err
}
