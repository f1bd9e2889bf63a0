package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"hit-counter/internal/logger"
)

var log = logger.WithComponent("CONFIG")

// AppConfig holds the resolved application configuration
type AppConfig struct {
	Env                string        `env:"APP_ENV" envDefault:"development"`
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"console"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL"`
	MaxNameLength      int           `env:"COUNTER_MAX_NAME_LENGTH" envDefault:"255"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	TrustProxyHeaders  bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	SentryDSN          string        `env:"SENTRY_DSN"`
	SentryEnvironment  string        `env:"SENTRY_ENVIRONMENT"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Common configuration errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError contains details about a configuration validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d config validation errors: %s (and %d more)", len(e), e[0].Error(), len(e)-1)
}

// Validate checks the configuration for errors
func (c *AppConfig) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ValidationError{Field: "port", Message: fmt.Sprintf("invalid port %d, must be 1-65535", c.Port)})
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, ValidationError{Field: "logFormat", Message: fmt.Sprintf("unsupported format %q, must be console or json", c.LogFormat)})
	}

	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: "publicBaseURL", Message: fmt.Sprintf("must be an absolute URL, got %q", c.PublicBaseURL)})
		}
	}

	if c.MaxNameLength < 1 {
		errs = append(errs, ValidationError{Field: "maxNameLength", Message: "must be at least 1"})
	}

	if c.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{Field: "rateLimitRPS", Message: "must not be negative"})
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, ValidationError{Field: "rateLimitBurst", Message: "must be at least 1 when rate limiting is enabled"})
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "shutdownTimeout", Message: "must be positive"})
	}

	return errs
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether APP_ENV selects production.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the environment, after loading envFiles
// (or .env when none are given) if present. Existing variables win.
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			log.Info("Loaded environment file: %s", f)
		}
	}

	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, err := range errs {
			log.Error("Validation error: %s", err.Error())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, errs.Error())
	}

	log.Info("Configuration loaded successfully | env=%s port=%d", cfg.Env, cfg.Port)
	return &cfg, nil
}

// MustLoad loads configuration and panics on error
func MustLoad(envFiles ...string) *AppConfig {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
