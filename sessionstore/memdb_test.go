package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patron-tools/patronctl/paia"
)

func TestMemDBRoundTrip(t *testing.T) {
	store, err := NewMemDB()
	require.NoError(t, err)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	ses := &paia.Session{
		Token:     "tok-1",
		PatronID:  "patron-1",
		Scope:     []string{"read_patron", "read_items"},
		ExpiresAt: expires,
	}

	require.NoError(t, store.Put(ctx, "user-a", ses))

	got, err := store.Get(ctx, "user-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "patron-1", got.PatronID)
	assert.Equal(t, []string{"read_patron", "read_items"}, got.Scope)
	assert.True(t, got.ExpiresAt.Equal(expires))

	// Unknown key yields no session and no error.
	missing, err := store.Get(ctx, "user-b")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemDBPutReplaces(t *testing.T) {
	store, err := NewMemDB()
	require.NoError(t, err)
	ctx := context.Background()

	first := &paia.Session{Token: "tok-1", PatronID: "patron-1", ExpiresAt: time.Now().Add(time.Hour)}
	second := &paia.Session{Token: "tok-2", PatronID: "patron-1", ExpiresAt: time.Now().Add(2 * time.Hour)}

	require.NoError(t, store.Put(ctx, "user-a", first))
	require.NoError(t, store.Put(ctx, "user-a", second))

	got, err := store.Get(ctx, "user-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-2", got.Token)
}

func TestMemDBDelete(t *testing.T) {
	store, err := NewMemDB()
	require.NoError(t, err)
	ctx := context.Background()

	ses := &paia.Session{Token: "tok-1", PatronID: "patron-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Put(ctx, "user-a", ses))
	require.NoError(t, store.Delete(ctx, "user-a"))

	got, err := store.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "user-a"))
}

func TestMemDBPurgeExpired(t *testing.T) {
	store, err := NewMemDB()
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Put(ctx, "expired-1", &paia.Session{Token: "a", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Put(ctx, "expired-2", &paia.Session{Token: "b", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Put(ctx, "active", &paia.Session{Token: "c", ExpiresAt: now.Add(time.Hour)}))

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	got, err := store.Get(ctx, "active")
	require.NoError(t, err)
	assert.NotNil(t, got)

	gone, err := store.Get(ctx, "expired-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
