package storage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryIdentityStoreIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000000))
	store := NewMemoryIdentityStore(clock, zap.NewNop())
	ctx := context.Background()

	first, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first.String(), "player-1v1-"))
	assert.True(t, strings.HasSuffix(first.String(), "-1700000000000"))
}

func TestMemoryIdentityStoreScopesByMode(t *testing.T) {
	store := NewMemoryIdentityStore(nil, zap.NewNop())
	ctx := context.Background()

	duel, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)
	battle, err := store.Resolve(ctx, "1v3")
	require.NoError(t, err)

	assert.NotEqual(t, duel, battle)
}

func TestMemoryIdentityStoreReset(t *testing.T) {
	store := NewMemoryIdentityStore(nil, zap.NewNop())
	ctx := context.Background()

	before, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)

	store.Reset()

	after, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func newTestRedisStore(t *testing.T) (*RedisIdentityStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdentityStoreFromClient(client, time.Hour, nil, zap.NewNop())
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisIdentityStoreIsIdempotent(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	first, err := store.Resolve(ctx, "1v3")
	require.NoError(t, err)
	second, err := store.Resolve(ctx, "1v3")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	key := "identity:" + store.SessionID() + ":1v3"
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, first.String(), stored)
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisIdentityStoreRefreshesTTLOnResolve(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	key := "identity:" + store.SessionID() + ":1v1"

	first, err := store.Resolve(ctx, "1v1")
	require.NoError(t, err)

	// Сессия живет дольше одного TTL, пока к идентификатору обращаются
	for i := 0; i < 3; i++ {
		mr.FastForward(45 * time.Minute)

		again, err := store.Resolve(ctx, "1v1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, time.Hour, mr.TTL(key))
	}
}

func TestRedisIdentityStoreConcurrentResolve(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.Resolve(ctx, "1v1")
			assert.NoError(t, err)
			results[i] = id.String()
		}(i)
	}
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, results[0], id)
	}
}

func TestRedisIdentityStoreSessionsAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer clientA.Close()
	defer clientB.Close()

	a := NewRedisIdentityStoreFromClient(clientA, 0, nil, zap.NewNop())
	b := NewRedisIdentityStoreFromClient(clientB, 0, nil, zap.NewNop())
	ctx := context.Background()

	idA, err := a.Resolve(ctx, "1v1")
	require.NoError(t, err)
	idB, err := b.Resolve(ctx, "1v1")
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
	assert.Equal(t, DefaultIdentityTTL, mr.TTL("identity:"+a.SessionID()+":1v1"))
}

func TestRedisIdentityStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdentityStoreFromClient(client, time.Hour, nil, zap.NewNop())
	defer store.Close()

	mr.Close()

	_, err := store.Resolve(context.Background(), "1v1")
	assert.Error(t, err)
}
