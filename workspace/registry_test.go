package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/editor"
	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/andrewpaige1/mindcanvas-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(st store.Store) *Registry {
	c := completion.CompleterFunc(func(ctx context.Context, systemPrompt, userText string) (string, error) {
		return "<p>rewritten</p>", nil
	})
	return NewRegistry(st, editor.NewMemoryState(), c, nil, Options{})
}

func TestRegistry_SharesWorkspacePerOwner(t *testing.T) {
	r := newRegistry(store.NewMemoryStore())
	defer r.Close()

	a1, ok := r.Get("owner-a")
	require.True(t, ok)
	a2, _ := r.Get("owner-a")
	b, _ := r.Get("owner-b")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.NotSame(t, a1.Graph(), b.Graph())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_OwnersSeeOnlyTheirCanvas(t *testing.T) {
	st := store.NewMemoryStore()
	r := newRegistry(st)
	defer r.Close()
	ctx := context.Background()

	a, _ := r.Get("owner-a")
	b, _ := r.Get("owner-b")

	_, err := a.Syncer.Load(ctx, "owner-a")
	require.NoError(t, err)
	_, err = b.Syncer.Load(ctx, "owner-b")
	require.NoError(t, err)

	node, err := a.Syncer.CreateNode(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, a.Syncer.Flush(ctx))

	snap, err := b.Syncer.Load(ctx, "owner-b")
	require.NoError(t, err)
	assert.Empty(t, snap.Nodes)

	snap, err = a.Syncer.Load(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, node.ID, snap.Nodes[0].ID)
}

func TestRegistry_CloseDrainsWrites(t *testing.T) {
	st := store.NewMemoryStore()
	r := newRegistry(st)
	ctx := context.Background()

	ws, _ := r.Get("owner-a")
	_, err := ws.Syncer.Load(ctx, "owner-a")
	require.NoError(t, err)
	node, err := ws.Syncer.CreateNode(ctx, 0, 0)
	require.NoError(t, err)

	r.Close()

	_, ok := st.Node(node.ID)
	assert.True(t, ok)

	_, ok = r.Get("owner-c")
	assert.False(t, ok)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistry_EvictIdle(t *testing.T) {
	st := store.NewMemoryStore()
	clk := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(st, editor.NewMemoryState(), nil, nil, Options{IdleTTL: 10 * time.Minute, Now: clk.Now})
	defer r.Close()
	ctx := context.Background()

	idle, _ := r.Get("owner-idle")
	_, err := idle.Syncer.Load(ctx, "owner-idle")
	require.NoError(t, err)
	node, err := idle.Syncer.CreateNode(ctx, 0, 0)
	require.NoError(t, err)
	require.NoError(t, idle.Syncer.Flush(ctx))

	clk.Advance(5 * time.Minute)
	active, _ := r.Get("owner-active")

	assert.Zero(t, r.EvictIdle(), "nothing has been idle for the full TTL")

	clk.Advance(6 * time.Minute)
	r.Get("owner-active")
	assert.Equal(t, 1, r.EvictIdle())
	assert.Equal(t, 1, r.Len())

	fresh, _ := r.Get("owner-idle")
	assert.NotSame(t, idle, fresh)
	assert.Nil(t, fresh.Syncer.MindMap(), "an evicted owner reloads")

	snap, err := fresh.Syncer.Load(ctx, "owner-idle")
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, node.ID, snap.Nodes[0].ID)

	again, _ := r.Get("owner-active")
	assert.Same(t, active, again)
}

// holdingStore parks inserts until release is closed.
type holdingStore struct {
	*store.MemoryStore
	release chan struct{}
}

func (h *holdingStore) InsertNode(ctx context.Context, node models.Node) error {
	<-h.release
	return h.MemoryStore.InsertNode(ctx, node)
}

func TestRegistry_EvictIdleKeepsPendingWrites(t *testing.T) {
	st := &holdingStore{MemoryStore: store.NewMemoryStore(), release: make(chan struct{})}
	clk := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(st, editor.NewMemoryState(), nil, nil, Options{IdleTTL: time.Minute, Now: clk.Now})
	defer r.Close()
	ctx := context.Background()

	ws, _ := r.Get("owner-a")
	_, err := ws.Syncer.Load(ctx, "owner-a")
	require.NoError(t, err)
	_, err = ws.Syncer.CreateNode(ctx, 0, 0)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	assert.Zero(t, r.EvictIdle())

	close(st.release)
	require.NoError(t, ws.Syncer.Flush(ctx))
	assert.Equal(t, 1, r.EvictIdle())
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	r := newRegistry(store.NewMemoryStore())
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
