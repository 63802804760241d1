package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Journal struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	UserID     string            `gorm:"not null;index;size:36" json:"user_id"`
	Title      string            `json:"title"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	AIAnalysis datatypes.JSONMap `json:"ai_analysis"` // numbers read back as json.Number
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (Journal) TableName() string { return "journals" }

func (j *Journal) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
