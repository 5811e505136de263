package models

// MindMap is the single canvas owned by a user.
type MindMap struct {
	ID     string `gorm:"primaryKey;size:64" json:"id,omitempty"`
	Title  string `gorm:"not null;size:100" json:"title"`
	UserID string `gorm:"not null;index;size:64" json:"user_id"` // References the auth subject
}

func (MindMap) TableName() string {
	return "mindmaps"
}
