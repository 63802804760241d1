package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserAssessment is the aggregate result of one submission. Rows are written
// once and never updated.
type UserAssessment struct {
	ID           string                   `gorm:"primaryKey;size:36" json:"id"`
	UserID       string                   `gorm:"not null;index;size:36" json:"user_id"`
	AssessmentID string                   `gorm:"not null;index;size:36" json:"assessment_id"`
	Assessment   *Assessment              `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
	TotalScore   int                      `gorm:"not null" json:"total_score"`
	RiskLevel    string                   `gorm:"not null" json:"risk_level"`
	AIAnalysis   datatypes.JSONMap        `json:"ai_analysis"` // numbers read back as json.Number
	Responses    []UserAssessmentResponse `gorm:"foreignKey:UserAssessmentID;constraint:OnDelete:CASCADE;" json:"responses,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

func (UserAssessment) TableName() string { return "user_assessments" }

func (ua *UserAssessment) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == "" {
		ua.ID = uuid.NewString()
	}
	return nil
}
