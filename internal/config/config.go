// Package config assembles the API server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// LIBRARY_CONFIG, then environment variables. The result is validated once
// and the server refuses to start on an invalid setting.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	envcfg "lending-library/pkg/config"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string `yaml:"store"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	HTTP struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	LogLevel         string  `yaml:"log_level"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	c := &Config{
		Store:            StoreMemory,
		SQLitePath:       "library.db",
		LogLevel:         "info",
		TraceSampleRatio: 1.0,
	}
	c.HTTP.Addr = ":8080"
	c.HTTP.ReadTimeout = 10 * time.Second
	c.HTTP.WriteTimeout = 15 * time.Second
	c.HTTP.ShutdownTimeout = 10 * time.Second
	c.HTTP.MaxBodyBytes = 1 << 20
	c.Auth.TokenTTL = 24 * time.Hour
	c.RateLimit.RPS = 10
	c.RateLimit.Burst = 20
	return c
}

// Load builds the configuration from defaults, the LIBRARY_CONFIG file and
// the environment.
func Load() (*Config, error) {
	c := Default()
	if path := os.Getenv("LIBRARY_CONFIG"); path != "" {
		if err := c.mergeFile(path); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// mergeFile overlays the YAML file at path. The path comes from the
// operator's environment.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Store = envcfg.GetEnvString("STORE", c.Store)
	c.DatabaseURL = envcfg.GetEnvString("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = envcfg.GetEnvString("SQLITE_PATH", c.SQLitePath)

	c.HTTP.Addr = envcfg.GetEnvString("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.ReadTimeout = envcfg.GetEnvDuration("HTTP_READ_TIMEOUT", c.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = envcfg.GetEnvDuration("HTTP_WRITE_TIMEOUT", c.HTTP.WriteTimeout)
	c.HTTP.ShutdownTimeout = envcfg.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
	c.HTTP.MaxBodyBytes = int64(envcfg.GetEnvInt("HTTP_MAX_BODY_BYTES", int(c.HTTP.MaxBodyBytes)))

	c.Auth.JWTSecret = envcfg.GetEnvString("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = envcfg.GetEnvDuration("JWT_TOKEN_TTL", c.Auth.TokenTTL)

	c.RateLimit.RPS = envcfg.GetEnvFloat("RATE_LIMIT_RPS", c.RateLimit.RPS)
	c.RateLimit.Burst = envcfg.GetEnvInt("RATE_LIMIT_BURST", c.RateLimit.Burst)

	c.LogLevel = envcfg.GetEnvString("LOG_LEVEL", c.LogLevel)
	c.TraceSampleRatio = envcfg.GetEnvFloat("TRACE_SAMPLE_RATIO", c.TraceSampleRatio)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want postgres, sqlite or memory)", c.Store))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http addr is required"))
	}
	if err := envcfg.ValidatePositiveDuration(c.HTTP.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown timeout: %w", err))
	}
	if err := envcfg.ValidateDurationRange(c.HTTP.ReadTimeout, time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("read timeout: %w", err))
	}
	if err := envcfg.ValidateDurationRange(c.HTTP.WriteTimeout, time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("write timeout: %w", err))
	}
	if err := envcfg.ValidateDurationRange(c.Auth.TokenTTL, time.Minute, 30*24*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("token ttl: %w", err))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes must be positive"))
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate limit rps must not be negative"))
	}
	if c.RateLimit.RPS > 0 {
		if err := envcfg.ValidateIntRange(c.RateLimit.Burst, 1, 10000); err != nil {
			errs = append(errs, fmt.Errorf("rate limit burst: %w", err))
		}
	}
	if err := envcfg.ValidateRatio(c.TraceSampleRatio); err != nil {
		errs = append(errs, fmt.Errorf("trace sample ratio: %w", err))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.Auth.JWTSecret != "" }
