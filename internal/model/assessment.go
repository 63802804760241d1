package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assessment codes with dedicated risk tables. Any other code is accepted and
// classified as Low.
const (
	CodePHQ9  = "PHQ-9"
	CodeGAD7  = "GAD-7"
	CodeCSSRS = "C-SSRS"
)

// Assessment is immutable reference data describing a screening instrument.
type Assessment struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Code        string     `gorm:"not null;index" json:"code"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Assessment) TableName() string { return "assessments" }

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
