package ai

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// WrapTransportError maps a client-side call failure onto the upstream
// sentinels: deadlines and network timeouts become ErrUpstreamTimeout, other
// network failures (refused, reset, DNS) become ErrUpstreamUnavailable. A
// caller cancellation keeps context.Canceled and no sentinel.
func WrapTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamTimeout, op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamTimeout, op, err)
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// StatusError builds the error for a non-2xx upstream answer.
func StatusError(op string, status int) error {
	return fmt.Errorf("%w: %s: status %d", domain.ErrUpstreamStatus, op, status)
}

// EmptyError builds the error for a 2xx answer without content.
func EmptyError(op string) error {
	return fmt.Errorf("%w: %s", domain.ErrUpstreamEmpty, op)
}
