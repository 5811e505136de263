package store

import (
	"context"
	"errors"

	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps the canvas in a SQL database reached through gorm
// (postgres in production, sqlite locally and in tests).
type GormStore struct {
	*gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (db *GormStore) FindMapByOwner(ctx context.Context, ownerID string) (*models.MindMap, error) {
	var mindMap models.MindMap
	err := db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id asc").First(&mindMap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mindMap, nil
}

func (db *GormStore) CreateMap(ctx context.Context, m *models.MindMap) (*models.MindMap, error) {
	mindMap := *m
	if mindMap.ID == "" {
		mindMap.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(&mindMap).Error; err != nil {
		return nil, err
	}
	return &mindMap, nil
}

func (db *GormStore) ListNodes(ctx context.Context, mapID string) ([]models.Node, error) {
	nodes := []models.Node{}
	if err := db.WithContext(ctx).Where("map_id = ?", mapID).Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (db *GormStore) InsertNode(ctx context.Context, node models.Node) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(&node).Error
}

func (db *GormStore) UpdateNodePosition(ctx context.Context, nodeID string, x, y float64) error {
	result := db.WithContext(ctx).Model(&models.Node{}).Where("id = ?", nodeID).Updates(map[string]interface{}{
		"position_x": x,
		"position_y": y,
	})
	return rowsResult(result)
}

func (db *GormStore) UpdateNodeContent(ctx context.Context, nodeID, content string) error {
	result := db.WithContext(ctx).Model(&models.Node{}).Where("id = ?", nodeID).Update("content", content)
	return rowsResult(result)
}

func rowsResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
