package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserAssessmentResponse is one itemized answer belonging to a UserAssessment.
type UserAssessmentResponse struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserAssessmentID string    `gorm:"not null;index;size:36" json:"user_assessment_id"`
	QuestionID       string    `gorm:"not null;index" json:"question_id"`
	ResponseValue    int       `gorm:"not null" json:"response_value"`
	ResponseText     *string   `gorm:"type:text" json:"response_text,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (UserAssessmentResponse) TableName() string { return "user_assessment_responses" }

func (r *UserAssessmentResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
