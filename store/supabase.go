package store

import (
	"context"
	"fmt"

	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/supabase-community/supabase-go"
)

const (
	mindMapsTable = "mindmaps"
	nodesTable    = "nodes"
)

// SupabaseStore talks to the managed Postgres backend through its PostgREST
// API. Row level security on the backend scopes rows to their owner.
type SupabaseStore struct {
	client *supabase.Client
}

// NewSupabaseStore builds one client for the process. The key is the service
// role key; it is never handed to browsers.
func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{Schema: "public"})
	if err != nil {
		return nil, fmt.Errorf("unable to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// The PostgREST client does not take a context; ctx is accepted to satisfy Store.

func (s *SupabaseStore) FindMapByOwner(ctx context.Context, ownerID string) (*models.MindMap, error) {
	var maps []models.MindMap
	_, err := s.client.From(mindMapsTable).
		Select("id,title,user_id", "", false).
		Eq("user_id", ownerID).
		Limit(1, "").
		ExecuteTo(&maps)
	if err != nil {
		return nil, fmt.Errorf("select mindmaps: %w", err)
	}
	if len(maps) == 0 || maps[0].ID == "" {
		return nil, ErrNotFound
	}
	return &maps[0], nil
}

func (s *SupabaseStore) CreateMap(ctx context.Context, m *models.MindMap) (*models.MindMap, error) {
	var created []models.MindMap
	_, err := s.client.From(mindMapsTable).
		Insert(m, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("insert mindmap: %w", err)
	}
	if len(created) == 0 || created[0].ID == "" {
		return nil, fmt.Errorf("insert mindmap: backend returned no id")
	}
	return &created[0], nil
}

func (s *SupabaseStore) ListNodes(ctx context.Context, mapID string) ([]models.Node, error) {
	nodes := []models.Node{}
	_, err := s.client.From(nodesTable).
		Select("*", "", false).
		Eq("map_id", mapID).
		ExecuteTo(&nodes)
	if err != nil {
		return nil, fmt.Errorf("select nodes: %w", err)
	}
	return nodes, nil
}

func (s *SupabaseStore) InsertNode(ctx context.Context, node models.Node) error {
	_, _, err := s.client.From(nodesTable).
		Insert(node, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("insert node %s: %w", node.ID, err)
	}
	return nil
}

func (s *SupabaseStore) UpdateNodePosition(ctx context.Context, nodeID string, x, y float64) error {
	update := map[string]interface{}{
		"position_x": x,
		"position_y": y,
	}
	if err := s.updateNode(nodeID, update); err != nil {
		return fmt.Errorf("update node %s position: %w", nodeID, err)
	}
	return nil
}

func (s *SupabaseStore) UpdateNodeContent(ctx context.Context, nodeID, content string) error {
	update := map[string]interface{}{
		"content": content,
	}
	if err := s.updateNode(nodeID, update); err != nil {
		return fmt.Errorf("update node %s content: %w", nodeID, err)
	}
	return nil
}

// updateNode patches one node row. PostgREST answers an update that matches
// nothing with success, so the changed rows are requested back and an empty
// answer becomes ErrNotFound.
func (s *SupabaseStore) updateNode(nodeID string, update map[string]interface{}) error {
	var updated []struct {
		ID string `json:"id"`
	}
	_, err := s.client.From(nodesTable).
		Update(update, "representation", "").
		Eq("id", nodeID).
		ExecuteTo(&updated)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}
