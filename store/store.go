// Package store is the client side of the remote persistence backend that
// holds mind maps and their nodes.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrewpaige1/mindcanvas-api/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store is the narrow row-level CRUD surface the canvas needs. Position and
// content updates touch only their own columns.
type Store interface {
	FindMapByOwner(ctx context.Context, ownerID string) (*models.MindMap, error)
	CreateMap(ctx context.Context, m *models.MindMap) (*models.MindMap, error)
	ListNodes(ctx context.Context, mapID string) ([]models.Node, error)
	InsertNode(ctx context.Context, node models.Node) error
	UpdateNodePosition(ctx context.Context, nodeID string, x, y float64) error
	UpdateNodeContent(ctx context.Context, nodeID, content string) error
}

// ResolveMap returns the owner's mind map, creating one with the given title
// when the owner has none yet.
func ResolveMap(ctx context.Context, s Store, ownerID, title string) (*models.MindMap, error) {
	if ownerID == "" {
		return nil, errors.New("store: owner id is required")
	}

	existing, err := s.FindMapByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find mind map: %w", err)
	}

	created, err := s.CreateMap(ctx, &models.MindMap{Title: title, UserID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("create mind map: %w", err)
	}
	return created, nil
}
