package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter_BurstThenReject(t *testing.T) {
	l := NewLocalLimiter(3)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	// other clients have their own budget
	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	// a full minute refills the bucket
	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

func TestLocalLimiter_Sweep(t *testing.T) {
	l := NewLocalLimiter(10)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	now = now.Add(time.Minute)
	_, _ = l.Allow(context.Background(), "b")

	now = now.Add(5 * time.Minute)
	l.Sweep()

	assert.NotContains(t, l.buckets, "a")
	assert.Contains(t, l.buckets, "b")
}
