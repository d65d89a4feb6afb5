package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ProviderOllama, cfg.AIProvider)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, 2048, cfg.OllamaNumPredict)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.InDelta(t, 0.5, cfg.AITemperature, 0.0001)
	assert.Equal(t, 1024, cfg.AIMaxTokens)
	assert.Equal(t, 5*time.Second, cfg.AIProbeTimeout)
	assert.Equal(t, 60*time.Second, cfg.AIGenerateTimeout)
	assert.Equal(t, 90*time.Second, cfg.AIEvaluateTimeout)
	assert.Equal(t, 6, cfg.AIDefaultScore)
	assert.Equal(t, 6, cfg.AIFallbackScore)
	assert.Equal(t, 50, cfg.AIMaxSkills)
	assert.Equal(t, time.Hour, cfg.AICacheTTL)
	assert.Equal(t, 0, cfg.AIBreakerThreshold)
	assert.Equal(t, "ai-mock-interview", cfg.OTELServiceName)
	assert.InDelta(t, -1.0, cfg.OTELSampleRatio, 0.0001)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, 120*time.Second, cfg.HTTPWriteTimeout)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 0, cfg.AIProviderRPM)
	assert.False(t, cfg.QuotaEnabled())
	assert.True(t, cfg.IsDev())
}

func TestConfig_Load_CustomValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("AI_PROVIDER", " GROQ ")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GROQ_MODEL", "llama-3.1-8b-instant")
	t.Setenv("AI_EVALUATE_TIMEOUT", "45s")
	t.Setenv("AI_DEFAULT_SCORE", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AI_PROVIDER_RPM", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, ProviderGroq, cfg.AIProvider)
	assert.Equal(t, "gsk-test", cfg.GroqAPIKey)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.ActiveModel())
	assert.Equal(t, 45*time.Second, cfg.AIEvaluateTimeout)
	assert.Equal(t, 5, cfg.AIDefaultScore)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.QuotaEnabled())
}

func TestConfig_Load_UnsupportedProvider(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("AI_PROVIDER", "openai")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported AI_PROVIDER")
}

func TestConfig_Policy(t *testing.T) {
	cfg := Config{
		AppEnv:            "prod",
		AIProvider:        ProviderOllama,
		OllamaModel:       "mistral",
		AIProbeTimeout:    5 * time.Second,
		AIGenerateTimeout: 60 * time.Second,
		AIEvaluateTimeout: 90 * time.Second,
		AIDefaultScore:    6,
		AIFallbackScore:   5,
		AIMaxSkills:       20,
	}

	p := cfg.Policy()
	assert.Equal(t, 5*time.Second, p.ProbeTimeout)
	assert.Equal(t, 60*time.Second, p.GenerateTimeout)
	assert.Equal(t, 90*time.Second, p.EvaluateTimeout)
	assert.Equal(t, 6, p.DefaultScore)
	assert.Equal(t, 5, p.FallbackScore)
	assert.Equal(t, 20, p.MaxSkills)
	assert.Equal(t, "mistral", p.Model)

	cfg.AppEnv = "test"
	p = cfg.Policy()
	assert.Less(t, p.ProbeTimeout, p.GenerateTimeout)
	assert.Less(t, p.GenerateTimeout, p.EvaluateTimeout)
	assert.Equal(t, 500*time.Millisecond, p.ProbeTimeout)
}

func clearEnvVars(t *testing.T) {
	envVars := []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "AI_PROVIDER", "OLLAMA_HOST", "OLLAMA_MODEL", "OLLAMA_NUM_PREDICT",
		"GROQ_API_KEY", "GROQ_BASE_URL", "GROQ_MODEL", "AI_TEMPERATURE", "AI_MAX_TOKENS",
		"AI_PROBE_TIMEOUT", "AI_GENERATE_TIMEOUT", "AI_EVALUATE_TIMEOUT", "AI_DEFAULT_SCORE",
		"AI_FALLBACK_SCORE", "AI_MAX_SKILLS", "FALLBACK_BANK_PATH", "REDIS_URL", "AI_CACHE_TTL",
		"AI_BREAKER_THRESHOLD", "AI_BREAKER_RECOVERY", "AI_PROVIDER_RPM", "AI_STARTUP_WAIT",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_SAMPLE_RATIO", "CORS_ALLOW_ORIGINS",
		"RATE_LIMIT_PER_MIN", "MAX_BODY_KB", "SERVER_SHUTDOWN_TIMEOUT", "HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
	}

	for _, envVar := range envVars {
		// t.Setenv registers restoration of the original value after the test.
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
