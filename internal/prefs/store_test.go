package prefs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Store{
		"redis":  New(rdb),
		"memory": New(nil),
	}
}

func TestStore_StringsAndBools(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v, err := s.GetString(ctx, "v1", KeyAnonName)
			require.NoError(t, err)
			assert.Empty(t, v)

			require.NoError(t, s.SetString(ctx, "v1", KeyAnonName, "Neon-Ghost"))
			v, err = s.GetString(ctx, "v1", KeyAnonName)
			require.NoError(t, err)
			assert.Equal(t, "Neon-Ghost", v)

			on, err := s.GetBool(ctx, "v1", KeyDarkMode)
			require.NoError(t, err)
			assert.False(t, on)

			require.NoError(t, s.SetBool(ctx, "v1", KeyDarkMode, true))
			on, _ = s.GetBool(ctx, "v1", KeyDarkMode)
			assert.True(t, on)

			other, _ := s.GetBool(ctx, "v2", KeyDarkMode)
			assert.False(t, other, "visitors must not share preferences")
		})
	}
}

func TestStore_MarkOnce(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := s.MarkOnce(ctx, "v1", LikedKey(3))
			require.NoError(t, err)
			assert.True(t, first)

			again, err := s.MarkOnce(ctx, "v1", LikedKey(3))
			require.NoError(t, err)
			assert.False(t, again)

			liked, _ := s.GetBool(ctx, "v1", LikedKey(3))
			assert.True(t, liked)
		})
	}
}

func TestStore_MarkOnceIsExclusiveUnderConcurrency(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if ok, err := s.MarkOnce(context.Background(), "v1", LikedKey(1)); err == nil && ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestRedisStore_RefreshesTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, s.SetBool(context.Background(), "v1", KeyVaultUnlocked, true))
	assert.Equal(t, TTL, mr.TTL("visitor:v1"))
}

func TestLikedKey(t *testing.T) {
	assert.Equal(t, "liked-42", LikedKey(42))
}
