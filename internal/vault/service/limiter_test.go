package service_test

import (
	"testing"
	"time"

	"github.com/vaultling/vaultling/internal/vault/service"

	"github.com/stretchr/testify/require"
)

func TestAttemptLimiter(t *testing.T) {
	t.Parallel()

	limiter := service.NewAttemptLimiter(3, time.Minute)

	for i := range 3 {
		require.True(t, limiter.Allow(1), "attempt %d should be allowed", i+1)
	}
	require.False(t, limiter.Allow(1), "burst exhausted")

	// Buckets are per user.
	require.True(t, limiter.Allow(2))
}
