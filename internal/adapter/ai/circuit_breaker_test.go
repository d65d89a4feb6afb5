package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// manualClock is advanced explicitly by tests.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, recovery time.Duration) (*CircuitBreaker, *manualClock) {
	clk := &manualClock{t: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker("test-model", threshold, recovery)
	cb.now = clk.now
	return cb, clk
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("test-model", 0, 0)
	assert.Equal(t, "test-model", cb.name)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 3, cb.failureThreshold)
	assert.Equal(t, 30*time.Second, cb.recoveryTimeout)
}

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	cb, clk := newTestBreaker(2, time.Minute)

	require.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())

	require.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	clk.advance(59 * time.Second)
	assert.False(t, cb.Allow())

	clk.advance(time.Second)
	assert.True(t, cb.Allow(), "trial call after recovery timeout")
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one trial in flight")

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	clk.advance(time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_SuccessResetsRun(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestNewBreakerTransport_DisabledReturnsBase(t *testing.T) {
	base := &fakeTransport{}
	assert.Same(t, base, NewBreakerTransport(base, "x", 0, time.Second))
}

func TestBreakerTransport_ShortCircuits(t *testing.T) {
	base := &fakeTransport{available: true}
	base.set("", fmt.Errorf("%w: refused", domain.ErrUpstreamUnavailable))
	tr := NewBreakerTransport(base, "fake", 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := tr.GenerateText(ctx, domain.Prompt{}, time.Second)
		require.Error(t, err)
	}
	assert.Equal(t, 2, base.callCount())

	resp, err := tr.GenerateText(ctx, domain.Prompt{}, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	assert.Equal(t, domain.TransportErrUnavailable, resp.ErrKind)
	assert.Equal(t, 2, base.callCount(), "open breaker must not reach the backend")

	assert.True(t, tr.ProbeAvailability(ctx, time.Second), "probes pass through an open breaker")
}

func TestBreakerTransport_CanceledCallDoesNotCount(t *testing.T) {
	base := &fakeTransport{}
	base.set("", context.Canceled)
	tr := NewBreakerTransport(base, "fake", 1, time.Hour).(*breakerTransport)

	_, err := tr.GenerateText(context.Background(), domain.Prompt{}, time.Second)
	require.Error(t, err)
	assert.Equal(t, CircuitClosed, tr.cb.State())

	base.set(`{"ok":true}`, nil)
	resp, err := tr.GenerateText(context.Background(), domain.Prompt{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text)
}

func TestBreakerTransport_CacheHitsDoNotCountAsSuccess(t *testing.T) {
	_, rdb := newTestRedis(t)
	base := &fakeTransport{text: `{"score": 8}`}
	cached := NewResponseCache(base, rdb, time.Hour, "ollama/mistral")
	tr := NewBreakerTransport(cached, "ollama", 2, time.Minute).(*breakerTransport)
	clk := &manualClock{t: time.Unix(1_700_000_000, 0)}
	tr.cb.now = clk.now
	ctx := context.Background()
	primed := BuildEvaluationPrompt("q", "a", "r")
	fresh := BuildEvaluationPrompt("q", "another answer", "r")

	_, err := tr.GenerateText(ctx, primed, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, base.callCount())

	base.set("", fmt.Errorf("%w: refused", domain.ErrUpstreamUnavailable))

	// A hit between two failures must not reset the failure run.
	_, err = tr.GenerateText(ctx, fresh, time.Second)
	require.Error(t, err)
	resp, err := tr.GenerateText(ctx, primed, time.Second)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	_, err = tr.GenerateText(ctx, fresh, time.Second)
	require.Error(t, err)
	assert.Equal(t, CircuitOpen, tr.cb.State())
	assert.Equal(t, 3, base.callCount())

	// A half-open trial answered from the cache leaves the breaker unresolved.
	clk.advance(2 * time.Minute)
	resp, err = tr.GenerateText(ctx, primed, time.Second)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, 3, base.callCount())
	assert.NotEqual(t, CircuitClosed, tr.cb.State())

	// The next real call is the trial that decides.
	base.set(`{"score": 7}`, nil)
	_, err = tr.GenerateText(ctx, fresh, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 4, base.callCount())
	assert.Equal(t, CircuitClosed, tr.cb.State())
}
