package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
)

type UserAssessmentResponseRepository interface {
	CreateBatch(ctx context.Context, responses []model.UserAssessmentResponse) error
}

type userAssessmentResponseRepository struct {
	conn conn
}

func (r *userAssessmentResponseRepository) CreateBatch(ctx context.Context, responses []model.UserAssessmentResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(&responses).Error
	})
}
