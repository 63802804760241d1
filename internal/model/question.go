package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AssessmentID  string    `gorm:"not null;index;size:36" json:"assessment_id"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	QuestionOrder int       `gorm:"not null" json:"question_order"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Question) TableName() string { return "assessment_questions" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
