package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(), "burst token %d", i)
	}
	assert.False(t, l.Allow(), "bucket should be empty after the burst")
}

func TestLimiter_Refills(t *testing.T) {
	l := New(Config{RequestsPerSecond: 100, Burst: 1})

	require.True(t, l.Allow())
	require.False(t, l.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow(), "tokens should refill over time")
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 1})
	require.True(t, l.Allow()) // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_PerKeyIsolation(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 1, Burst: 1})

	assert.True(t, m.GetLimiter("grip:a").Allow())
	assert.True(t, m.GetLimiter("grip:b").Allow(), "keys get independent buckets")
	assert.False(t, m.GetLimiter("grip:a").Allow())

	assert.Same(t, m.GetLimiter("grip:a"), m.GetLimiter("grip:a"))
}
