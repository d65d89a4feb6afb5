package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const cacheKeyPrefix = "ai:resp:"

// responseCache wraps a Transport and stores extractable model answers in Redis.
// Only GenerateText is cached; probes are passed through.
type responseCache struct {
	base      domain.Transport
	rdb       redis.UniversalClient
	ttl       time.Duration
	namespace string
}

// NewResponseCache wraps base with a Redis-backed cache. namespace should
// identify the provider and model so switching either starts a fresh cache.
// If rdb is nil or ttl <= 0, base is returned unmodified.
func NewResponseCache(base domain.Transport, rdb redis.UniversalClient, ttl time.Duration, namespace string) domain.Transport {
	if base == nil || rdb == nil || ttl <= 0 {
		return base
	}
	return &responseCache{base: base, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *responseCache) GenerateText(ctx domain.Context, p domain.Prompt, timeout time.Duration) (domain.RawModelResponse, error) {
	key := c.keyFor(p)
	start := time.Now()
	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		observability.RecordCacheLookup("hit")
		return domain.RawModelResponse{
			Text:     cached,
			Elapsed:  time.Since(start),
			Provider: c.namespace,
			ErrKind:  domain.TransportErrNone,
			Cached:   true,
		}, nil
	case errors.Is(err, redis.Nil):
		observability.RecordCacheLookup("miss")
	default:
		observability.RecordCacheLookup("error")
		slog.Warn("response cache read failed", slog.String("task", string(p.Task)), slog.Any("error", err))
	}

	resp, err := c.base.GenerateText(ctx, p, timeout)
	if err != nil {
		return resp, err
	}
	// Unusable answers are not cached so the next call gets a fresh attempt.
	if _, ok := ExtractJSONBlock(resp.Text); ok {
		if serr := c.rdb.Set(ctx, key, resp.Text, c.ttl).Err(); serr != nil {
			slog.Warn("response cache write failed", slog.String("task", string(p.Task)), slog.Any("error", serr))
		}
	}
	return resp, nil
}

func (c *responseCache) ProbeAvailability(ctx domain.Context, timeout time.Duration) bool {
	return c.base.ProbeAvailability(ctx, timeout)
}

func (c *responseCache) keyFor(p domain.Prompt) string {
	var b strings.Builder
	b.WriteString(c.namespace)
	b.WriteByte(0)
	b.WriteString(string(p.Task))
	b.WriteByte(0)
	b.WriteString(p.System)
	b.WriteByte(0)
	b.WriteString(p.User)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(p.MaxTokens))
	h := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
