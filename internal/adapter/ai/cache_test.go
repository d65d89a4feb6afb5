package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestNewResponseCache_Passthrough(t *testing.T) {
	t.Parallel()

	base := &fakeTransport{}
	_, rdb := newTestRedis(t)
	assert.Same(t, base, NewResponseCache(base, nil, time.Hour, "ns"))
	assert.Same(t, base, NewResponseCache(base, rdb, 0, "ns"))
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	base := &fakeTransport{text: `Here you go: {"score": 8}`}
	tr := NewResponseCache(base, rdb, time.Hour, "ollama/mistral")
	ctx := context.Background()
	p := BuildEvaluationPrompt("q", "a", "r")

	first, err := tr.GenerateText(ctx, p, time.Second)
	require.NoError(t, err)
	second, err := tr.GenerateText(ctx, p, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1, base.callCount())
	assert.Equal(t, first.Text, second.Text)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Len(t, mr.Keys(), 1)
	assert.Contains(t, mr.Keys()[0], cacheKeyPrefix)
	assert.Greater(t, mr.TTL(mr.Keys()[0]), time.Duration(0))

	other := BuildEvaluationPrompt("q", "another answer", "r")
	_, err = tr.GenerateText(ctx, other, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, base.callCount())
}

func TestResponseCache_SkipsUnusableAndErrors(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	base := &fakeTransport{text: "I'm sorry, I cannot do that."}
	tr := NewResponseCache(base, rdb, time.Hour, "ns")
	ctx := context.Background()
	p := BuildResumePrompt("resume")

	_, err := tr.GenerateText(ctx, p, time.Second)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())

	base.set("", fmt.Errorf("%w: deadline", domain.ErrUpstreamTimeout))
	resp, err := tr.GenerateText(ctx, p, time.Second)
	require.Error(t, err)
	assert.Equal(t, domain.TransportErrTimeout, resp.ErrKind)
	assert.Empty(t, mr.Keys())
}

func TestResponseCache_RedisDownIsAMiss(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	base := &fakeTransport{text: `{"name": "Ada"}`}
	tr := NewResponseCache(base, rdb, time.Hour, "ns")
	mr.Close()

	resp, err := tr.GenerateText(context.Background(), BuildResumePrompt("Ada"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Ada"}`, resp.Text)
	assert.Equal(t, 1, base.callCount())
}

func TestResponseCache_ProbePassesThrough(t *testing.T) {
	t.Parallel()

	_, rdb := newTestRedis(t)
	base := &fakeTransport{available: true}
	tr := NewResponseCache(base, rdb, time.Hour, "ns")
	assert.True(t, tr.ProbeAvailability(context.Background(), time.Second))
}

func TestResponseCache_KeyDependsOnNamespace(t *testing.T) {
	t.Parallel()

	p := BuildResumePrompt("same")
	a := (&responseCache{namespace: "ollama/mistral"}).keyFor(p)
	b := (&responseCache{namespace: "groq/llama"}).keyFor(p)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, (&responseCache{namespace: "ollama/mistral"}).keyFor(p))
}
