package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("bind addr = %q", cfg.BindAddr)
	}
	if cfg.AuthMode != AuthModeDemo {
		t.Fatalf("auth mode = %q, want demo", cfg.AuthMode)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("ttls = %v, %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.SubmitDelay != 0 {
		t.Fatalf("timeout = %v, delay = %v", cfg.RequestTimeout, cfg.SubmitDelay)
	}
	if !cfg.SeedDemoData || cfg.DatabaseURL != "" {
		t.Fatalf("seed = %v, db = %q", cfg.SeedDemoData, cfg.DatabaseURL)
	}
	if cfg.UseR2() || cfg.GoogleEnabled() {
		t.Fatal("optional integrations should be off by default")
	}
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_MODE", "Password")
	t.Setenv("SUBMIT_DELAY", "1500ms")
	t.Setenv("ACCESS_TOKEN_MINUTES", "30")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.AuthMode != AuthModePassword {
		t.Fatalf("auth mode = %q", cfg.AuthMode)
	}
	if cfg.SubmitDelay != 1500*time.Millisecond {
		t.Fatalf("delay = %v", cfg.SubmitDelay)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("access ttl = %v", cfg.AccessTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"AUTH_MODE":       "magic",
		"REQUEST_TIMEOUT": "0s",
		"SUBMIT_DELAY":    "soon",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(k, v)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%s: expected error", k, v)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	log := cfg.NewLogger()
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("formatter = %T, want JSON", log.Formatter)
	}

	cfg = &Config{LogLevel: "loud"}
	if got := cfg.NewLogger().GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("fallback level = %v", got)
	}
}
