// Package config loads the calculator service configuration. Values come
// from built-in defaults, then an optional YAML file named by CALC_CONFIG,
// then the environment (including a .env file in the working directory).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	Addr            string        `yaml:"addr"`
	ServiceName     string        `yaml:"service_name"`
	Development     bool          `yaml:"development"`
	OTLPLogs        bool          `yaml:"otlp_logs"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Calculator Calculator `yaml:"calculator"`
}

// Calculator configures hosted calculator sessions.
type Calculator struct {
	MaxDigits     int           `yaml:"max_digits"`
	MaxSessions   int           `yaml:"max_sessions"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ServiceName:     "calculator-api",
		ShutdownTimeout: 5 * time.Second,
		Calculator: Calculator{
			MaxDigits:     16,
			MaxSessions:   10000,
			SessionTTL:    30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load builds the configuration, reading the YAML file through fs.
func Load(fs afero.Fs) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path := os.Getenv("CALC_CONFIG"); path != "" {
		if err := cfg.readFile(fs, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service_name must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.Calculator.MaxDigits < 0 {
		errs = append(errs, errors.New("calculator.max_digits must not be negative"))
	}
	if c.Calculator.MaxSessions < 0 {
		errs = append(errs, errors.New("calculator.max_sessions must not be negative"))
	}
	if c.Calculator.SessionTTL < 0 {
		errs = append(errs, errors.New("calculator.session_ttl must not be negative"))
	}
	if c.Calculator.SweepInterval < 0 {
		errs = append(errs, errors.New("calculator.sweep_interval must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) readFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CALC_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("OTEL_SERVICE_NAME"); ok && v != "" {
		c.ServiceName = v
	}

	var errs []error
	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setBool("CALC_DEVELOPMENT", &c.Development)
	setBool("CALC_OTLP_LOGS", &c.OTLPLogs)
	setDuration("CALC_SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	setInt("CALC_MAX_DIGITS", &c.Calculator.MaxDigits)
	setInt("CALC_MAX_SESSIONS", &c.Calculator.MaxSessions)
	setDuration("CALC_SESSION_TTL", &c.Calculator.SessionTTL)
	setDuration("CALC_SWEEP_INTERVAL", &c.Calculator.SweepInterval)

	return errors.Join(errs...)
}

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}
