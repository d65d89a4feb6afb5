package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// ErrQuotaExceeded marks calls refused locally because the provider budget is spent.
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// Limiter spends cost units from the bucket named key.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// quotaTransport refuses GenerateText once the shared provider budget is spent.
type quotaTransport struct {
	base    domain.Transport
	limiter Limiter
	key     string
}

// NewQuotaTransport guards base with limiter under key. A nil limiter returns base.
func NewQuotaTransport(base domain.Transport, limiter Limiter, key string) domain.Transport {
	if base == nil || limiter == nil {
		return base
	}
	return &quotaTransport{base: base, limiter: limiter, key: key}
}

func (q *quotaTransport) GenerateText(ctx domain.Context, p domain.Prompt, timeout time.Duration) (domain.RawModelResponse, error) {
	allowed, retryAfter, err := q.limiter.Allow(ctx, q.key, 1)
	if err != nil {
		slog.Warn("provider quota check failed, allowing call", slog.String("key", q.key), slog.Any("error", err))
	}
	if !allowed {
		observability.RecordQuotaRejection(q.key)
		return domain.RawModelResponse{Provider: q.key, ErrKind: domain.TransportErrUnavailable},
			fmt.Errorf("%w: %w for %s, retry after %s", domain.ErrUpstreamUnavailable, ErrQuotaExceeded, q.key, retryAfter.Round(time.Millisecond))
	}
	return q.base.GenerateText(ctx, p, timeout)
}

func (q *quotaTransport) ProbeAvailability(ctx domain.Context, timeout time.Duration) bool {
	return q.base.ProbeAvailability(ctx, timeout)
}
