package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AuthMode selects how login credentials are checked.
type AuthMode string

const (
	// AuthModeDemo accepts any credentials and fabricates unknown users.
	AuthModeDemo AuthMode = "demo"
	// AuthModePassword verifies stored password hashes.
	AuthModePassword AuthMode = "password"
)

type Config struct {
	BindAddr    string `env:"BIND_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET,notEmpty"`

	AccessTokenMinutes int `env:"ACCESS_TOKEN_MINUTES" envDefault:"15"`
	RefreshTokenDays   int `env:"REFRESH_TOKEN_DAYS" envDefault:"7"`

	// derived from the two settings above
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AuthMode       AuthMode      `env:"AUTH_MODE" envDefault:"demo"`
	SubmitDelay    time.Duration `env:"SUBMIT_DELAY" envDefault:"0s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SeedDemoData   bool          `env:"SEED_DEMO_DATA" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	UploadDir         string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadBaseURL     string        `env:"UPLOAD_BASE_URL" envDefault:"http://localhost:8080"`
	R2AccessKeyID     string        `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string        `env:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint        string        `env:"R2_ENDPOINT"`
	R2BucketName      string        `env:"R2_BUCKET_NAME"`
	R2URLTTL          time.Duration `env:"R2_URL_TTL" envDefault:"1h"`
}

// UseR2 reports whether uploads go to R2 instead of local disk.
func (c *Config) UseR2() bool {
	return c.R2Endpoint != "" && c.R2BucketName != ""
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	c.AuthMode = AuthMode(strings.ToLower(string(c.AuthMode)))
	if c.AuthMode != AuthModeDemo && c.AuthMode != AuthModePassword {
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeDemo, AuthModePassword, c.AuthMode)
	}
	if c.AccessTokenMinutes <= 0 || c.RefreshTokenDays <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.SubmitDelay < 0 {
		return errors.New("SUBMIT_DELAY must not be negative")
	}
	c.AccessTokenTTL = time.Duration(c.AccessTokenMinutes) * time.Minute
	c.RefreshTokenTTL = time.Duration(c.RefreshTokenDays) * 24 * time.Hour
	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
	return nil
}
