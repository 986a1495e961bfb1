package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sid", "multiplication_basic", 7))

	now = now.Add(59 * time.Minute)
	value, ok, err := store.Get(ctx, "sid", "multiplication_basic")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, value)

	// Raise refreshes the TTL.
	_, err = store.Raise(ctx, "sid", "multiplication_basic", 3)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, ok, _ = store.Get(ctx, "sid", "multiplication_basic")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = store.Get(ctx, "sid", "multiplication_basic")
	assert.False(t, ok)
	assert.Empty(t, store.sessions)
}
