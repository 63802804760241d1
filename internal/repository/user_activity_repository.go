package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
)

type UserActivityRepository interface {
	Create(ctx context.Context, activity *model.UserActivity) error
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.UserActivity, error)
}

type userActivityRepository struct {
	conn conn
}

func (r *userActivityRepository) Create(ctx context.Context, activity *model.UserActivity) error {
	return r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(activity).Error
	})
}

func (r *userActivityRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID).Order("created_at DESC")
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query.Find(&activities).Error
	})
	return activities, err
}
