package repository

import (
	"context"

	"github.com/lshigami/wellrelay/internal/model"
	"gorm.io/gorm"
)

type JournalRepository interface {
	Create(ctx context.Context, journal *model.Journal) error
	// FindLatest returns the newest entry, restricted to userID when non-empty.
	FindLatest(ctx context.Context, userID string) (*model.Journal, error)
}

type journalRepository struct {
	conn conn
}

func (r *journalRepository) Create(ctx context.Context, journal *model.Journal) error {
	return r.conn.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(journal).Error
	})
}

func (r *journalRepository) FindLatest(ctx context.Context, userID string) (*model.Journal, error) {
	var journal model.Journal
	err := r.conn.run(ctx, func(tx *gorm.DB) error {
		query := tx.Order("created_at DESC")
		if userID != "" {
			query = query.Where("user_id = ?", userID)
		}
		return query.First(&journal).Error
	})
	if err != nil {
		return nil, err
	}
	return &journal, nil
}
