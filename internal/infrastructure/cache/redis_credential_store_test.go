package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisCredentialStore, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := newFakeClock()
	store := NewRedisCredentialStoreWithClient(client, "test:", testValidity, testWindow, WithRedisClock(clock.Now))
	return store, mr, clock
}

func TestRedisCredentialStore_AccessToken(t *testing.T) {
	ctx := context.Background()
	store, mr, clock := newTestRedisStore(t)

	_, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := store.SetAccessToken(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(testValidity), set.ExpiresAt)
	assert.Equal(t, testValidity, mr.TTL("test:access_token"))

	token, ok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok1", token.Value)
	assert.True(t, token.ExpiresAt.Equal(set.ExpiresAt))

	clock.Advance(testValidity)
	_, ok, err = store.AccessToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(testValidity)
	assert.False(t, mr.Exists("test:access_token"))
}

func TestRedisCredentialStore_ShouldForceRefresh(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestRedisStore(t)

	force, err := store.ShouldForceRefresh(ctx)
	require.NoError(t, err)
	assert.False(t, force)

	_, err = store.SetAccessToken(ctx, "tok1")
	require.NoError(t, err)

	clock.Advance(testValidity - testWindow + time.Minute)
	force, err = store.ShouldForceRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, force)
}

func TestRedisCredentialStore_AuthSession(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestRedisStore(t)

	_, err := store.SetAuthSession(ctx, "at1", "s1", "u1")
	require.NoError(t, err)

	session, ok, err := store.AuthSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "at1", session.AuthToken)
	assert.Equal(t, "s1", session.Sek)
	assert.Equal(t, "u1", session.UserName)

	require.NoError(t, store.InvalidateAll(ctx))
	_, ok, err = store.AuthSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCredentialStore_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedisStore(t)

	other := NewRedisCredentialStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:", testValidity, testWindow)
	defer other.Close()

	_, err := store.SetAccessToken(ctx, "shared")
	require.NoError(t, err)

	token, ok, err := other.AccessToken(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shared", token.Value)
}

func TestRedisCredentialStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedisStore(t)

	require.NoError(t, mr.Set("test:access_token", "not json"))
	_, _, err := store.AccessToken(ctx)
	assert.Error(t, err)
}

func TestRedisCredentialStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedisStore(t)
	mr.Close()

	_, err := store.SetAccessToken(ctx, "tok1")
	assert.Error(t, err)
}
