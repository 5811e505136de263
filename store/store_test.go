package store

import (
	"context"
	"errors"
	"testing"

	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("ResolveMap creates once then reuses", func(t *testing.T) {
		first, err := ResolveMap(ctx, s, "owner-1", "My First Mind Map")
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		assert.Equal(t, "My First Mind Map", first.Title)
		assert.Equal(t, "owner-1", first.UserID)

		second, err := ResolveMap(ctx, s, "owner-1", "Other Title")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "My First Mind Map", second.Title)
	})

	t.Run("FindMapByOwner unknown owner", func(t *testing.T) {
		_, err := s.FindMapByOwner(ctx, "nobody")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("nodes are scoped to their map", func(t *testing.T) {
		mapA, err := ResolveMap(ctx, s, "owner-a", "A")
		require.NoError(t, err)
		mapB, err := ResolveMap(ctx, s, "owner-b", "B")
		require.NoError(t, err)

		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "a-1", MapID: mapA.ID, Label: "a1", Content: "<p>a1</p>"}))
		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "a-2", MapID: mapA.ID, Label: "a2", Content: "<p>a2</p>"}))
		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "b-1", MapID: mapB.ID, Label: "b1", Content: "<p>b1</p>"}))

		nodes, err := s.ListNodes(ctx, mapA.ID)
		require.NoError(t, err)
		ids := []string{}
		for _, n := range nodes {
			assert.Equal(t, mapA.ID, n.MapID)
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{"a-1", "a-2"}, ids)

		empty, err := s.ListNodes(ctx, "no-such-map")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("position update touches only position", func(t *testing.T) {
		m, err := ResolveMap(ctx, s, "owner-p", "P")
		require.NoError(t, err)
		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "p-1", MapID: m.ID, Label: "keep", Content: "<p>keep</p>", PositionX: 1, PositionY: 2}))
		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "p-2", MapID: m.ID, Label: "other", Content: "<p>other</p>", PositionX: 5, PositionY: 6}))

		require.NoError(t, s.UpdateNodePosition(ctx, "p-1", 40, -12.5))
		require.NoError(t, s.UpdateNodePosition(ctx, "p-1", 40, -12.5))

		nodes, err := s.ListNodes(ctx, m.ID)
		require.NoError(t, err)
		byID := indexNodes(nodes)
		assert.Equal(t, models.Node{ID: "p-1", MapID: m.ID, Label: "keep", Content: "<p>keep</p>", PositionX: 40, PositionY: -12.5}, stripAssoc(byID["p-1"]))
		assert.Equal(t, models.Node{ID: "p-2", MapID: m.ID, Label: "other", Content: "<p>other</p>", PositionX: 5, PositionY: 6}, stripAssoc(byID["p-2"]))
	})

	t.Run("content update touches only content", func(t *testing.T) {
		m, err := ResolveMap(ctx, s, "owner-c", "C")
		require.NoError(t, err)
		require.NoError(t, s.InsertNode(ctx, models.Node{ID: "c-1", MapID: m.ID, Label: "label", Content: "<p>old</p>", PositionX: 3, PositionY: 4}))

		require.NoError(t, s.UpdateNodeContent(ctx, "c-1", "<p>new</p>"))

		nodes, err := s.ListNodes(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, models.Node{ID: "c-1", MapID: m.ID, Label: "label", Content: "<p>new</p>", PositionX: 3, PositionY: 4}, stripAssoc(nodes[0]))
	})

	t.Run("updates on unknown node", func(t *testing.T) {
		assert.True(t, errors.Is(s.UpdateNodeContent(ctx, "ghost", "x"), ErrNotFound))
		assert.True(t, errors.Is(s.UpdateNodePosition(ctx, "ghost", 1, 1), ErrNotFound))
	})
}

func indexNodes(nodes []models.Node) map[string]models.Node {
	out := make(map[string]models.Node, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out
}

func stripAssoc(n models.Node) models.Node {
	n.MindMap = models.MindMap{}
	return n
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestResolveMap_RequiresOwner(t *testing.T) {
	_, err := ResolveMap(context.Background(), NewMemoryStore(), "", "title")
	assert.Error(t, err)
}

type failingStore struct {
	*MemoryStore
	findErr   error
	createErr error
	creates   int
}

func (f *failingStore) FindMapByOwner(ctx context.Context, ownerID string) (*models.MindMap, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.MemoryStore.FindMapByOwner(ctx, ownerID)
}

func (f *failingStore) CreateMap(ctx context.Context, m *models.MindMap) (*models.MindMap, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.MemoryStore.CreateMap(ctx, m)
}

func TestResolveMap_FindFailureDoesNotCreate(t *testing.T) {
	s := &failingStore{MemoryStore: NewMemoryStore(), findErr: errors.New("connection refused")}
	_, err := ResolveMap(context.Background(), s, "owner-1", "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, s.creates)
}

func TestResolveMap_CreateFailure(t *testing.T) {
	s := &failingStore{MemoryStore: NewMemoryStore(), createErr: errors.New("permission denied")}
	_, err := ResolveMap(context.Background(), s, "owner-1", "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create mind map")
	assert.Empty(t, s.Maps())
}
