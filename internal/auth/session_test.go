package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prognoz-ai/prognoz-go/internal/database"
)

func newTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(database.NewRedisClientFromExisting(client), time.Hour), mr
}

func TestSessionLifecycle(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, session.Authenticated)
	assert.Empty(t, session.Tokens)

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Authenticated)

	require.NoError(t, store.Destroy(ctx, "alice"))
	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionTokens(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "bob")
	require.NoError(t, err)

	session, err := store.SetTokens(ctx, "bob", map[string]string{
		"avito": "avito-token",
		"hh":    "hh-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "avito-token", session.Token("avito"))
	assert.Equal(t, "hh-token", session.Token("hh"))

	// Empty values leave existing tokens untouched.
	session, err = store.SetTokens(ctx, "bob", map[string]string{
		"avito": "",
		"hh":    "rotated",
	})
	require.NoError(t, err)
	assert.Equal(t, "avito-token", session.Token("avito"))
	assert.Equal(t, "rotated", session.Token("hh"))
}

func TestSessionTokensRequireSession(t *testing.T) {
	store, _ := newTestSessionStore(t)
	_, err := store.SetTokens(context.Background(), "ghost", map[string]string{"avito": "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "carol")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(ctx, "carol")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
