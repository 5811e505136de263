package models

// Node is a text card placed on a mind map canvas.
type Node struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	MapID     string  `gorm:"not null;index;size:64" json:"map_id"` // References MindMap
	Label     string  `gorm:"not null;size:200" json:"label"`
	Content   string  `gorm:"type:text" json:"content"` // Rich text serialized as HTML
	PositionX float64 `gorm:"not null" json:"position_x"`
	PositionY float64 `gorm:"not null" json:"position_y"`

	MindMap MindMap `gorm:"foreignKey:MapID" json:"-"`
}

func (Node) TableName() string {
	return "nodes"
}
