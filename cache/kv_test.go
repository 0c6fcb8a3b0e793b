package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryKV_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	kv := NewMemoryKV()
	kv.now = func() time.Time { return now }

	require.NoError(t, kv.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, kv.Set(ctx, "b", "2", 0))

	v, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	now = now.Add(time.Minute)
	_, err = kv.Get(ctx, "a")
	require.ErrorIs(t, err, ErrMiss)

	v, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "2", v)

	require.NoError(t, kv.Del(ctx, "b"))
	_, err = kv.Get(ctx, "b")
	require.ErrorIs(t, err, ErrMiss)
}
