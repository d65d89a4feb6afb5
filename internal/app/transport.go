// Package app wires configuration into the transport, engine and HTTP router.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/groq"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/ollama"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/service/ratelimiter"
)

// AIBackend is the decorated transport plus the resources it owns.
type AIBackend struct {
	Transport domain.Transport
	Provider  string
	Model     string
	// Redis is nil when response caching is disabled.
	Redis *redis.Client
}

// Close releases the Redis connection pool, if any.
func (b AIBackend) Close() error {
	if b.Redis == nil {
		return nil
	}
	return b.Redis.Close()
}

// NewAIBackend selects the provider and wraps it with the optional provider
// quota, response cache and circuit breaker, innermost first. Cache hits spend
// no quota, and the breaker sits outside the cache so hits never count as
// backend successes.
func NewAIBackend(cfg config.Config) (AIBackend, error) {
	var (
		base     domain.Transport
		provider string
		model    string
	)
	switch {
	case cfg.AIProvider == config.ProviderGroq && strings.TrimSpace(cfg.GroqAPIKey) != "":
		c := groq.New(cfg)
		base, provider, model = c, groq.Provider, c.Model()
	default:
		if cfg.AIProvider == config.ProviderGroq {
			slog.Warn("GROQ_API_KEY not set, falling back to ollama", slog.String("ollama_host", cfg.OllamaHost))
		}
		c := ollama.New(cfg)
		base, provider, model = c, ollama.Provider, c.Model()
	}
	out := AIBackend{Transport: base, Provider: provider, Model: model}

	if cfg.CacheEnabled() || cfg.QuotaEnabled() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return AIBackend{}, fmt.Errorf("op=app.NewAIBackend: parse REDIS_URL: %w", err)
		}
		out.Redis = redis.NewClient(opts)
	}
	if cfg.QuotaEnabled() {
		key := provider + "/" + model
		limiter := ratelimiter.NewRedisLuaLimiter(out.Redis, map[string]ratelimiter.BucketConfig{
			key: ratelimiter.NewBucketConfigFromPerMinute(cfg.AIProviderRPM),
		})
		out.Transport = ai.NewQuotaTransport(out.Transport, limiter, key)
		slog.Info("ai provider quota enabled", slog.Int("per_minute", cfg.AIProviderRPM))
	} else if cfg.AIProviderRPM > 0 {
		slog.Warn("AI_PROVIDER_RPM needs REDIS_URL, quota disabled")
	}
	if cfg.CacheEnabled() {
		out.Transport = ai.NewResponseCache(out.Transport, out.Redis, cfg.AICacheTTL, provider+"/"+model)
		slog.Info("ai response cache enabled", slog.Duration("ttl", cfg.AICacheTTL))
	}
	if cfg.AIBreakerThreshold > 0 {
		out.Transport = ai.NewBreakerTransport(out.Transport, provider, cfg.AIBreakerThreshold, cfg.AIBreakerRecovery)
		slog.Info("ai circuit breaker enabled",
			slog.Int("threshold", cfg.AIBreakerThreshold),
			slog.Duration("recovery", cfg.AIBreakerRecovery))
	}
	return out, nil
}
