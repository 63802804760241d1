package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByAssessmentID(ctx context.Context, assessmentID string) ([]model.Question, error)
}

type questionRepository struct {
	conn conn
}

func (r *questionRepository) FindByAssessmentID(ctx context.Context, assessmentID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("assessment_id = ?", assessmentID).Order("question_order ASC").Find(&questions).Error
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}
