package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_SucceedsAfterFewAttempts(t *testing.T) {
	calls := 0
	err := Until(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntil_Timeout(t *testing.T) {
	start := time.Now()
	err := Until(context.Background(), 5*time.Millisecond, 30*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestUntil_ConditionErrorStops(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Until(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestUntil_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Until(ctx, 5*time.Millisecond, 0, func(context.Context) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}
