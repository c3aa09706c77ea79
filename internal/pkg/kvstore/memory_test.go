package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/memberauth/internal/pkg/clock"
)

func TestMemory_Contract(t *testing.T) {
	m := NewMemory()
	t.Cleanup(func() { _ = m.Close() })

	testStoreContract(t, m)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewMemory(WithClock(clk), WithJanitor(0))
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Set(ctx, "otp:1", "digest", 600*time.Second))
	require.NoError(t, m.Set(ctx, "forever", "v", 0))

	clk.Advance(599 * time.Second)
	ok, err := m.Exists(ctx, "otp:1")
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, err = m.Get(ctx, "otp:1")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := m.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestMemory_IncrKeepsTTLAndExpireSetsIt(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewMemory(WithClock(clk), WithJanitor(0))
	t.Cleanup(func() { _ = m.Close() })

	n, err := m.Incr(ctx, "otp_attempts:1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, m.Expire(ctx, "otp_attempts:1", 600*time.Second))

	clk.Advance(300 * time.Second)
	n, err = m.Incr(ctx, "otp_attempts:1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	clk.Advance(300 * time.Second)
	n, err = m.Incr(ctx, "otp_attempts:1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts once the window elapsed")
}

func TestMemory_ExpireNonPositiveDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithJanitor(0))
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Expire(ctx, "k", 0))

	ok, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewMemory(WithClock(clk), WithJanitor(0))
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Set(ctx, "a", "1", time.Second))
	require.NoError(t, m.Set(ctx, "b", "2", time.Hour))

	clk.Advance(time.Minute)
	m.sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.items, 1)
	assert.Contains(t, m.items, "b")
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithJanitor(time.Millisecond))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Ping(ctx), ErrClosed)
	assert.ErrorIs(t, m.Set(ctx, "k", "v", 0), ErrClosed)
	_, err := m.Incr(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory(WithJanitor(0))
	t.Cleanup(func() { _ = m.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromDriver(t *testing.T) {
	s, err := NewFromDriver(context.Background(), " Memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	assert.NoError(t, s.Close())

	_, err = NewFromDriver(context.Background(), "etcd", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(context.Background(), DriverRedis, FactoryOptions{Redis: RedisConfig{URL: "://bad"}})
	assert.Error(t, err)
}
