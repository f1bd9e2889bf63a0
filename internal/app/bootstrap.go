package app

import (
	"errors"
	"os"
	"strings"

	"hit-counter/internal/config"
	"hit-counter/internal/counter"
	"hit-counter/internal/logger"
	"hit-counter/internal/observability"
	"hit-counter/internal/ratelimit"
	"hit-counter/internal/sentryx"
)

// ServerApp holds all runtime dependencies for the counter server.
type ServerApp struct {
	Config         *config.AppConfig
	Registry       *counter.Registry
	Metrics        *observability.Metrics
	Limiter        *ratelimit.Limiter
	CounterHandler *counter.Handler
	Logger         *logger.Logger
}

// New builds a fully wired server application.
func New(cfg *config.AppConfig) (*ServerApp, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	logger.Init(logger.Config{
		Output:   os.Stdout,
		MinLevel: logger.ParseLevel(cfg.LogLevel),
		UseColor: !cfg.IsProduction(),
		JSON:     strings.EqualFold(cfg.LogFormat, "json"),
	})

	log := logger.WithComponent("MAIN")

	sentryEnv := cfg.SentryEnvironment
	if sentryEnv == "" {
		sentryEnv = cfg.Env
	}
	if err := sentryx.Init(sentryx.Options{
		DSN:         cfg.SentryDSN,
		Environment: sentryEnv,
		Release:     "hit-counter@" + counter.ServiceVersion,
		ServerName:  "hit-counter",
	}); err != nil {
		log.Warn("Error reporting disabled: %v", err)
	}

	log.Info("Environment: %s", cfg.Env)
	log.Info("Listen address: %s", cfg.Addr())
	log.Info("Error reporting: %v", sentryx.Enabled())
	if cfg.PublicBaseURL != "" {
		log.Info("Public base URL: %s", cfg.PublicBaseURL)
	}

	registry := counter.NewRegistry()
	metrics := observability.NewMetrics()
	metrics.RegisterCounterGauge(registry.Len)

	limiter := ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if limiter != nil {
		log.Info("Rate limiting: %.2f req/s per client, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	return &ServerApp{
		Config:         cfg,
		Registry:       registry,
		Metrics:        metrics,
		Limiter:        limiter,
		CounterHandler: counter.NewHandler(registry, metrics, cfg.PublicBaseURL, cfg.MaxNameLength),
		Logger:         log,
	}, nil
}

// Run loads configuration, then serves until shutdown.
func Run(envFiles ...string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	app, err := New(cfg)
	if err != nil {
		return err
	}
	return app.Run()
}
