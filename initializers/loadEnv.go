package initializers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBDsn             string        `mapstructure:"DB_DSN"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	CheckoutTimeout   time.Duration `mapstructure:"CHECKOUT_TIMEOUT"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFormat         string        `mapstructure:"LOG_FORMAT"`
	CorsOrigins       string        `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"DB_DRIVER":            "mysql",
	"DB_DSN":               "",
	"DB_MAX_OPEN_CONNS":    20,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "30m",
	"CHECKOUT_TIMEOUT":     "5s",
	"JWT_SECRET":           "",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "json",
	"CORS_ORIGINS":         "http://localhost:4200",
}

// LoadEnv reads an optional .env file, then lets process environment
// variables override it.
func LoadEnv() (*Config, error) {
	// a missing .env is fine, the process environment may carry everything
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DBDsn == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.CheckoutTimeout <= 0 {
		errs = append(errs, errors.New("CHECKOUT_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CorsOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
