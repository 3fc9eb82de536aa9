package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CALC_CONFIG", "")

	cfg, err := Load(afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	want := Default()
	if cfg != want {
		t.Fatalf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := afero.WriteFile(fs, "/etc/calc.yaml", []byte(`
addr: ":9090"
service_name: calc-from-file
calculator:
  max_digits: 12
  session_ttl: 10m
`), 0o644)
	if err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("CALC_CONFIG", "/etc/calc.yaml")
	t.Setenv("CALC_MAX_DIGITS", "20")
	t.Setenv("CALC_OTLP_LOGS", "true")

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.ServiceName != "calc-from-file" {
		t.Fatalf("expected service name from file, got %q", cfg.ServiceName)
	}
	if cfg.Calculator.SessionTTL != 10*time.Minute {
		t.Fatalf("expected session ttl 10m, got %s", cfg.Calculator.SessionTTL)
	}
	if cfg.Calculator.MaxDigits != 20 {
		t.Fatalf("expected env to override max digits, got %d", cfg.Calculator.MaxDigits)
	}
	if !cfg.OTLPLogs {
		t.Fatal("expected otlp logs enabled from env")
	}
	if cfg.Calculator.MaxSessions != Default().Calculator.MaxSessions {
		t.Fatalf("expected default max sessions, got %d", cfg.Calculator.MaxSessions)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CALC_CONFIG", "/nope.yaml")

	_, err := Load(afero.NewMemMapFs())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CALC_CONFIG", "")
	t.Setenv("CALC_SESSION_TTL", "soon")
	t.Setenv("CALC_MAX_SESSIONS", "many")

	_, err := Load(afero.NewMemMapFs())
	if err == nil {
		t.Fatal("expected error for malformed environment")
	}
	for _, key := range []string{"CALC_SESSION_TTL", "CALC_MAX_SESSIONS"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }, want: "addr"},
		{name: "negative digits", mutate: func(c *Config) { c.Calculator.MaxDigits = -1 }, want: "max_digits"},
		{name: "negative sessions", mutate: func(c *Config) { c.Calculator.MaxSessions = -5 }, want: "max_sessions"},
		{name: "zero shutdown", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, want: "shutdown_timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}
