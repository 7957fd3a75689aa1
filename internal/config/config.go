package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/observability"
	"github.com/davidbz/troubleshooter/internal/provider/openai"
)

// Config represents the service configuration.
type Config struct {
	Server       ServerConfig
	CORS         CORSConfig
	LLM          LLMConfig
	OpenAI       openai.Config
	Troubleshoot TroubleshootConfig
	RateLimit    RateLimitConfig
	Log          observability.LogConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"90"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Accept,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`
}

// TroubleshootConfig contains pipeline settings.
type TroubleshootConfig struct {
	Validation    string `env:"TROUBLESHOOT_VALIDATION"     envDefault:"strict"`
	LLMTimeout    int    `env:"TROUBLESHOOT_LLM_TIMEOUT"    envDefault:"60"`
	DefaultFormat string `env:"TROUBLESHOOT_DEFAULT_FORMAT" envDefault:"html"`
}

// RateLimitConfig contains request limiter settings. An empty RedisAddr disables limiting.
type RateLimitConfig struct {
	RedisAddr         string `env:"RATE_LIMIT_REDIS_ADDR"`
	RedisPassword     string `env:"RATE_LIMIT_REDIS_PASSWORD"`
	RedisDB           int    `env:"RATE_LIMIT_REDIS_DB"             envDefault:"0"`
	RequestsPerMinute int    `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"30"`
}

// Enabled reports whether a limiter backend is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.RedisAddr != "" && c.RequestsPerMinute > 0
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*LLMConfig
	*openai.Config
	*TroubleshootConfig
	*RateLimitConfig
	*observability.LogConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.LLM,
		&cfg.OpenAI,
		&cfg.Troubleshoot,
		&cfg.RateLimit,
		&cfg.Log,
	}
}

// ServiceConfig converts the pipeline settings into the domain configuration.
func (c *TroubleshootConfig) ServiceConfig() (domain.ServiceConfig, error) {
	mode := domain.ValidationMode(c.Validation)
	switch mode {
	case domain.ValidationStrict, domain.ValidationLoose:
	default:
		return domain.ServiceConfig{}, fmt.Errorf("invalid TROUBLESHOOT_VALIDATION %q: want strict or loose", c.Validation)
	}

	return domain.ServiceConfig{
		Validation: mode,
		LLMTimeout: time.Duration(c.LLMTimeout) * time.Second,
	}, nil
}

// Format returns the default response format.
func (c *TroubleshootConfig) Format() (domain.Format, error) {
	format, err := domain.ParseFormat(c.DefaultFormat)
	if err != nil {
		return "", fmt.Errorf("invalid TROUBLESHOOT_DEFAULT_FORMAT: %w", err)
	}
	return format, nil
}
