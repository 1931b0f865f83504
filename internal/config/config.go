package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Invoicer"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Locale   string `envconfig:"LOCALE" default:"en-IN"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoicer"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret       string        `envconfig:"JWT_SECRET"`
		ClientJWTSecret string        `envconfig:"CLIENT_JWT_SECRET"`
		TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
		ClientTokenTTL  time.Duration `envconfig:"CLIENT_TOKEN_TTL" default:"168h"`
		ApprovalTTL     time.Duration `envconfig:"APPROVAL_TTL" default:"168h"`
	}

	Invoice struct {
		Prefix         string `envconfig:"INVOICE_PREFIX" default:"INV"`
		Currency       string `envconfig:"DEFAULT_CURRENCY" default:"INR"`
		PaymentTerms   string `envconfig:"DEFAULT_PAYMENT_TERMS" default:"Net 30"`
		PaymentRetries int    `envconfig:"PAYMENT_RETRIES" default:"3"`
	}

	Portal struct {
		URL string `envconfig:"CLIENT_PORTAL_URL" default:"http://localhost:3000"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// LogLevel maps App.LogLevel onto a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	if cfg.Auth.ClientJWTSecret == "" {
		cfg.Auth.ClientJWTSecret = cfg.Auth.JWTSecret
	}

	cfg.Portal.URL = strings.TrimRight(cfg.Portal.URL, "/")

	return &cfg, nil
}
