package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
)

// AssessmentWithQuestionCount is a listing row.
type AssessmentWithQuestionCount struct {
	model.Assessment
	QuestionCount int
}

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	FindByID(ctx context.Context, id string) (*model.Assessment, error)
	FindByIDWithQuestions(ctx context.Context, id string) (*model.Assessment, error)
	FindByCode(ctx context.Context, code string) (*model.Assessment, error)
	FindAllWithQuestionCount(ctx context.Context) ([]AssessmentWithQuestionCount, error)
}

type assessmentRepository struct {
	conn conn
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	// GORM creates the associated questions when assessment.Questions is populated.
	return r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(assessment).Error
	})
}

func (r *assessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&assessment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDWithQuestions(ctx context.Context, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessment_questions.question_order ASC")
		}).Where("id = ?", id).First(&assessment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByCode(ctx context.Context, code string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("code = ?", code).Order("created_at ASC").First(&assessment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindAllWithQuestionCount(ctx context.Context) ([]AssessmentWithQuestionCount, error) {
	var results []AssessmentWithQuestionCount
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Model(&model.Assessment{}).
			Select("assessments.*, (SELECT COUNT(*) FROM assessment_questions WHERE assessment_questions.assessment_id = assessments.id) AS question_count").
			Order("assessments.title ASC").
			Scan(&results).Error
	})
	return results, err
}
