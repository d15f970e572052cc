package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPacer_EnforcesMinimumDelay(t *testing.T) {
	pacer := NewRequestPacer(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, pacer.Wait(ctx))
	require.NoError(t, pacer.Wait(ctx))
	require.NoError(t, pacer.Wait(ctx))
	elapsed := time.Since(start)

	// First call is free, the next two each wait the minimum delay
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestRequestPacer_CancelledContext(t *testing.T) {
	pacer := NewRequestPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, pacer.Wait(ctx))

	cancel()
	err := pacer.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
