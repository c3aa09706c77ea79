package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises behavior every driver must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := s.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "otp:1", "a", time.Minute))
		require.NoError(t, s.Set(ctx, "otp:1", "b", time.Minute))

		v, err := s.Get(ctx, "otp:1")
		require.NoError(t, err)
		assert.Equal(t, "b", v)
	})

	t.Run("incr creates at one", func(t *testing.T) {
		for want := int64(1); want <= 4; want++ {
			n, err := s.Incr(ctx, "attempts:1")
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}
	})

	t.Run("incr non integer", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "word", "abc", 0))
		_, err := s.Incr(ctx, "word")
		assert.ErrorIs(t, err, ErrNotInteger)
	})

	t.Run("concurrent incr is serialized", func(t *testing.T) {
		var wg sync.WaitGroup
		seen := make(chan int64, 20)
		for range 20 {
			wg.Go(func() {
				n, err := s.Incr(ctx, "attempts:race")
				assert.NoError(t, err)
				seen <- n
			})
		}
		wg.Wait()
		close(seen)

		got := make(map[int64]bool)
		for n := range seen {
			got[n] = true
		}
		assert.Len(t, got, 20)
	})

	t.Run("delete many", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "d1", "x", time.Minute))
		require.NoError(t, s.Set(ctx, "d2", "y", time.Minute))
		require.NoError(t, s.Delete(ctx, "d1", "d2", "never-set"))

		for _, k := range []string{"d1", "d2"} {
			ok, err := s.Exists(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok)
		}
		assert.NoError(t, s.Delete(ctx))
	})

	t.Run("write batch", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "otp_attempts:2", "2", time.Minute))

		require.NoError(t, s.Write(ctx, Batch{
			Sets: []Entry{
				{Key: "otp:2", Value: "digest", TTL: time.Minute},
				{Key: "otp_member:2", Value: `{"name":"x"}`, TTL: time.Minute},
			},
			Deletes: []string{"otp_attempts:2"},
		}))

		v, err := s.Get(ctx, "otp:2")
		require.NoError(t, err)
		assert.Equal(t, "digest", v)

		v, err = s.Get(ctx, "otp_member:2")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"x"}`, v)

		_, err = s.Get(ctx, "otp_attempts:2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expire missing is noop", func(t *testing.T) {
		assert.NoError(t, s.Expire(ctx, "nothing-here", time.Minute))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
