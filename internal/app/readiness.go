package app

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
)

// Prober is the availability probe of the interview engine.
type Prober interface {
	Available(ctx context.Context) bool
}

// ErrAIUnavailable is reported by the ai readiness check.
var ErrAIUnavailable = errors.New("ai provider did not answer its probe")

// BuildReadinessChecks returns the ai check and, when caching is enabled, a redis check.
func BuildReadinessChecks(p Prober, rdb redis.UniversalClient) []httpserver.ReadinessCheck {
	checks := []httpserver.ReadinessCheck{{
		Name: "ai",
		Check: func(ctx context.Context) error {
			if p == nil || !p.Available(ctx) {
				return ErrAIUnavailable
			}
			return nil
		},
	}}
	if rdb != nil {
		checks = append(checks, httpserver.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
