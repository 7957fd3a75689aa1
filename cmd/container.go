package main

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/troubleshooter/internal/config"
	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/httpserver"
	"github.com/davidbz/troubleshooter/internal/httpserver/middleware"
	"github.com/davidbz/troubleshooter/internal/observability"
	"github.com/davidbz/troubleshooter/internal/provider/echo"
	"github.com/davidbz/troubleshooter/internal/provider/openai"
	"github.com/davidbz/troubleshooter/internal/ratelimit/redis"
	"github.com/davidbz/troubleshooter/internal/render"
)

const (
	rateLimitWindow = time.Minute

	providerOpenAI = "openai"
	providerEcho   = "echo"
)

func buildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []struct {
		name        string
		constructor interface{}
	}{
		// Configuration
		{"config", config.Load},
		{"config dependencies", config.ParseDependenciesConfig},
		{"service config", func(cfg *config.TroubleshootConfig) (domain.ServiceConfig, error) {
			return cfg.ServiceConfig()
		}},
		{"default format", func(cfg *config.TroubleshootConfig) (domain.Format, error) {
			return cfg.Format()
		}},

		// Observability
		{"logger", observability.InitLogger},
		{"event bus", func(logger *zap.Logger) domain.EventPublisher {
			return observability.NewEventBus(logger)
		}},

		// LLM client
		{"LLM client", newLLMClient},

		// Renderers
		{"renderer registry", func() (domain.RendererRegistry, error) {
			return render.NewDefaultRegistry()
		}},

		// Domain Services
		{"troubleshoot service", domain.NewTroubleshootService},

		// HTTP Layer
		{"rate limiter", newLimiter},
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP handler", httpserver.NewHandler},
		{"HTTP server", httpserver.NewServer},
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", p.name, err)
		}
	}

	return container, nil
}

// newLLMClient selects the completion backend named by LLM_PROVIDER.
func newLLMClient(llm *config.LLMConfig, openaiCfg *openai.Config) (domain.LLMClient, error) {
	switch llm.Provider {
	case "", providerOpenAI:
		client, err := openai.NewClient(*openaiCfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case providerEcho:
		return echo.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q: want %s or %s", llm.Provider, providerOpenAI, providerEcho)
	}
}

// newLimiter returns a Redis-backed limiter, or a no-op one when no Redis address is configured.
func newLimiter(cfg *config.RateLimitConfig) (middleware.Limiter, error) {
	if !cfg.Enabled() {
		return middleware.NoopLimiter{}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	limiter, err := redis.NewLimiter(client, cfg.RequestsPerMinute, rateLimitWindow)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return limiter, nil
}
