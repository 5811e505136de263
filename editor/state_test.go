package editor

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStateContract(t *testing.T, store StateStore) {
	ctx := context.Background()

	st, err := store.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, st.Active())

	first, err := store.Activate(ctx, "owner-1", "node-a")
	require.NoError(t, err)
	assert.Equal(t, "node-a", first.NodeID)

	second, err := store.Activate(ctx, "owner-1", "node-a")
	require.NoError(t, err)
	assert.Greater(t, second.Generation, first.Generation, "reopening bumps the generation")

	current, err := store.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, second, current)

	other, err := store.Current(ctx, "owner-2")
	require.NoError(t, err)
	assert.False(t, other.Active(), "owners are isolated")

	require.NoError(t, store.Deactivate(ctx, "owner-1"))
	closed, err := store.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, closed.Active())

	third, err := store.Activate(ctx, "owner-1", "node-b")
	require.NoError(t, err)
	assert.Greater(t, third.Generation, second.Generation, "generation survives close")
}

func TestMemoryState(t *testing.T) {
	runStateContract(t, NewMemoryState())
}

func setupTestRedis(t *testing.T) (*RedisState, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisState("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis state: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestRedisState(t *testing.T) {
	store, _ := setupTestRedis(t)
	runStateContract(t, store)
}

func TestRedisState_SharedAcrossClients(t *testing.T) {
	a, s := setupTestRedis(t)
	b, err := NewRedisState("redis://" + s.Addr())
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	opened, err := a.Activate(ctx, "owner-1", "node-a")
	require.NoError(t, err)

	seen, err := b.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, opened, seen)
	assert.True(t, s.Exists("editor:owner-1"))
	assert.True(t, s.TTL("editor:owner-1") > 0)
}

func TestNewRedisState_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	_, err := NewRedisState("redis://" + addr)
	assert.Error(t, err)

	_, err = NewRedisState("not a url")
	assert.Error(t, err)
}
