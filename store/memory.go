package store

import (
	"context"
	"sort"
	"sync"

	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/google/uuid"
)

// MemoryStore keeps maps and nodes in process memory. It backs tests and
// STORE_DRIVER=memory local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	maps  map[string]models.MindMap
	nodes map[string]models.Node
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		maps:  make(map[string]models.MindMap),
		nodes: make(map[string]models.Node),
	}
}

func (s *MemoryStore) FindMapByOwner(ctx context.Context, ownerID string) (*models.MindMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.MindMap
	for _, m := range s.maps {
		if m.UserID != ownerID {
			continue
		}
		// Lowest id wins so repeated lookups are stable.
		if found == nil || m.ID < found.ID {
			m := m
			found = &m
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *MemoryStore) CreateMap(ctx context.Context, m *models.MindMap) (*models.MindMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *m
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	s.maps[created.ID] = created
	return &created, nil
}

func (s *MemoryStore) ListNodes(ctx context.Context, mapID string) ([]models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := []models.Node{}
	for _, id := range s.order {
		if n := s.nodes[id]; n.MapID == mapID {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (s *MemoryStore) InsertNode(ctx context.Context, node models.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; !exists {
		s.order = append(s.order, node.ID)
	}
	s.nodes[node.ID] = node
	return nil
}

func (s *MemoryStore) UpdateNodePosition(ctx context.Context, nodeID string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return ErrNotFound
	}
	n.PositionX = x
	n.PositionY = y
	s.nodes[nodeID] = n
	return nil
}

func (s *MemoryStore) UpdateNodeContent(ctx context.Context, nodeID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return ErrNotFound
	}
	n.Content = content
	s.nodes[nodeID] = n
	return nil
}

// Node returns a stored node by id.
func (s *MemoryStore) Node(nodeID string) (models.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[nodeID]
	return n, ok
}

// Maps returns every stored map ordered by id.
func (s *MemoryStore) Maps() []models.MindMap {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MindMap, 0, len(s.maps))
	for _, m := range s.maps {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
