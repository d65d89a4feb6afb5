// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Supported AI providers.
const (
	ProviderOllama = "ollama"
	ProviderGroq   = "groq"
)

// Config holds all application configuration parsed from environment variables.
// It is read-only after Load.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// LogLevel overrides the environment default (debug in dev, info elsewhere).
	LogLevel string `env:"LOG_LEVEL"`

	// AIProvider selects the transport: "ollama" (local model server) or "groq" (hosted API).
	AIProvider       string  `env:"AI_PROVIDER" envDefault:"ollama"`
	OllamaHost       string  `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel      string  `env:"OLLAMA_MODEL" envDefault:"mistral"`
	OllamaNumPredict int     `env:"OLLAMA_NUM_PREDICT" envDefault:"2048"`
	GroqAPIKey       string  `env:"GROQ_API_KEY"`
	GroqBaseURL      string  `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel        string  `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	AITemperature    float32 `env:"AI_TEMPERATURE" envDefault:"0.5"`
	AIMaxTokens      int     `env:"AI_MAX_TOKENS" envDefault:"1024"` // ceiling on per-task budgets

	// Per-task timeouts: probe < generation < evaluation.
	AIProbeTimeout    time.Duration `env:"AI_PROBE_TIMEOUT" envDefault:"5s"`
	AIGenerateTimeout time.Duration `env:"AI_GENERATE_TIMEOUT" envDefault:"60s"`
	AIEvaluateTimeout time.Duration `env:"AI_EVALUATE_TIMEOUT" envDefault:"90s"`

	// AIDefaultScore is used when the model answered but its score is unusable.
	AIDefaultScore int `env:"AI_DEFAULT_SCORE" envDefault:"6"`
	// AIFallbackScore is used when no usable model answer exists at all.
	AIFallbackScore  int    `env:"AI_FALLBACK_SCORE" envDefault:"6"`
	AIMaxSkills      int    `env:"AI_MAX_SKILLS" envDefault:"50"`
	FallbackBankPath string `env:"FALLBACK_BANK_PATH"`

	// Optional transport decorators.
	RedisURL           string        `env:"REDIS_URL"`
	AICacheTTL         time.Duration `env:"AI_CACHE_TTL" envDefault:"1h"`
	AIBreakerThreshold int           `env:"AI_BREAKER_THRESHOLD" envDefault:"0"`
	AIBreakerRecovery  time.Duration `env:"AI_BREAKER_RECOVERY" envDefault:"30s"`
	// AIProviderRPM caps model calls per minute across all processes sharing REDIS_URL.
	AIProviderRPM int `env:"AI_PROVIDER_RPM" envDefault:"0"`
	// AIStartupWait bounds how long the server waits for the provider at boot. Zero disables waiting.
	AIStartupWait time.Duration `env:"AI_STARTUP_WAIT" envDefault:"0s"`

	OTLPEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"ai-mock-interview"`
	OTELSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"-1"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	MaxBodyKB             int64         `env:"MAX_BODY_KB" envDefault:"1024"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	// HTTPWriteTimeout must exceed AIEvaluateTimeout so degraded answers can still be written.
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if cfg.AIProvider != ProviderOllama && cfg.AIProvider != ProviderGroq {
		return Config{}, fmt.Errorf("op=config.Load: unsupported AI_PROVIDER %q", cfg.AIProvider)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// CacheEnabled reports whether model responses should be cached in Redis.
func (c Config) CacheEnabled() bool { return strings.TrimSpace(c.RedisURL) != "" && c.AICacheTTL > 0 }

// QuotaEnabled reports whether model calls share a Redis-backed per-minute budget.
func (c Config) QuotaEnabled() bool { return strings.TrimSpace(c.RedisURL) != "" && c.AIProviderRPM > 0 }

// Policy is the read-only tuning of the interview engine.
type Policy struct {
	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	EvaluateTimeout time.Duration
	DefaultScore    int
	FallbackScore   int
	MaxSkills       int
	// Model is used only for token estimates in logs.
	Model string
}

// Policy derives the engine policy. In test environments timeouts are shortened so
// degraded paths resolve quickly.
func (c Config) Policy() Policy {
	p := Policy{
		ProbeTimeout:    c.AIProbeTimeout,
		GenerateTimeout: c.AIGenerateTimeout,
		EvaluateTimeout: c.AIEvaluateTimeout,
		DefaultScore:    c.AIDefaultScore,
		FallbackScore:   c.AIFallbackScore,
		MaxSkills:       c.AIMaxSkills,
		Model:           c.ActiveModel(),
	}
	if c.IsTest() {
		p.ProbeTimeout = 500 * time.Millisecond
		p.GenerateTimeout = 2 * time.Second
		p.EvaluateTimeout = 3 * time.Second
	}
	return p
}

// ActiveModel returns the model name of the configured provider.
func (c Config) ActiveModel() string {
	if c.AIProvider == ProviderGroq {
		return c.GroqModel
	}
	return c.OllamaModel
}
