package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityTypeAssessment = "assessment"
	ActivityTypeJournal    = "journal"
)

// UserActivity is a best-effort audit entry shown on the student's dashboard.
type UserActivity struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	UserID       string            `gorm:"not null;index;size:36" json:"user_id"`
	ActivityType string            `gorm:"not null;index" json:"activity_type"`
	Title        string            `gorm:"not null" json:"title"`
	Details      datatypes.JSONMap `json:"details"` // numbers read back as json.Number
	CreatedAt    time.Time         `json:"created_at"`
}

func (UserActivity) TableName() string { return "user_activities" }

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
