package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WaitForAI polls p until it reports available or maxWait elapses. The engine
// itself never retries; this only delays serving traffic at boot.
func WaitForAI(ctx context.Context, p Prober, maxWait time.Duration) error {
	if maxWait <= 0 || p == nil {
		return nil
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 250 * time.Millisecond
	expo.MaxInterval = 5 * time.Second
	expo.MaxElapsedTime = maxWait

	attempt := 0
	op := func() error {
		attempt++
		if p.Available(ctx) {
			return nil
		}
		slog.Info("waiting for ai provider", slog.Int("attempt", attempt))
		return ErrAIUnavailable
	}
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return fmt.Errorf("op=app.WaitForAI: after %d attempts: %w", attempt, err)
	}
	return nil
}
