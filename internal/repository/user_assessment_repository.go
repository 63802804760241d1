package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserAssessmentFilter narrows a user's submission history.
type UserAssessmentFilter struct {
	UserID       string
	AssessmentID string // Optional
	Limit        int    // <= 0 means no limit
}

type UserAssessmentRepository interface {
	Create(ctx context.Context, ua *model.UserAssessment) error
	FindByIDWithDetails(ctx context.Context, id string) (*model.UserAssessment, error)
	FindAllByUser(ctx context.Context, filter UserAssessmentFilter) ([]model.UserAssessment, error)
}

type userAssessmentRepository struct {
	conn conn
}

// Create inserts only the aggregate row; itemized responses are written
// separately once the generated id is known.
func (r *userAssessmentRepository) Create(ctx context.Context, ua *model.UserAssessment) error {
	return r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(ua).Error
	})
}

func (r *userAssessmentRepository) FindByIDWithDetails(ctx context.Context, id string) (*model.UserAssessment, error) {
	var ua model.UserAssessment
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.
			Preload("Assessment").
			Preload("Responses", func(db *gorm.DB) *gorm.DB {
				return db.Order("user_assessment_responses.created_at ASC")
			}).
			Where("id = ?", id).
			First(&ua).Error
	})
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *userAssessmentRepository) FindAllByUser(ctx context.Context, filter UserAssessmentFilter) ([]model.UserAssessment, error) {
	var results []model.UserAssessment
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", filter.UserID)
		if filter.AssessmentID != "" {
			query = query.Where("assessment_id = ?", filter.AssessmentID)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		return query.Order("created_at DESC").Find(&results).Error
	})
	return results, err
}
