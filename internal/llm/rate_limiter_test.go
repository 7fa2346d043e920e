package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_RequestBudget(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, 1000)
	rl.now = func() time.Time { return now }
	rl.requestLastCheck = now

	ctx := context.Background()
	require.NoError(t, rl.AllowRequest(ctx))
	require.NoError(t, rl.AllowRequest(ctx))
	assert.Error(t, rl.AllowRequest(ctx))

	// за 30 секунд при 2 RPM восстанавливается один запрос
	now = now.Add(30 * time.Second)
	require.NoError(t, rl.AllowRequest(ctx))
	assert.Error(t, rl.AllowRequest(ctx))
}

func TestRateLimiter_TokenBudget(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(60, 100)
	rl.now = func() time.Time { return now }
	rl.tokenLastCheck = now

	ctx := context.Background()
	require.NoError(t, rl.AllowTokens(ctx, 80))
	assert.Error(t, rl.AllowTokens(ctx, 30))

	// запрос больше часового лимита не должен паниковать
	assert.Error(t, rl.AllowTokens(ctx, 1000))

	rl.ConsumeTokens(500)
	_, tokens := rl.GetStats()
	assert.Zero(t, tokens)
}
