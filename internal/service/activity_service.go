package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultActivityLimit = 20

type ActivityService interface {
	// Record writes an activity entry with the caller's repositories. Failures
	// are logged and returned as Degraded, never as errors.
	Record(ctx context.Context, repos *repository.Repositories, activity *model.UserActivity) StepResult
	ListRecent(ctx context.Context, userID string, limit int, authToken string) ([]dto.UserActivityDTO, error)
}

type activityService struct {
	store   repository.Provider
	metrics *observability.Metrics
}

func NewActivityService(store repository.Provider, metrics *observability.Metrics) ActivityService {
	return &activityService{store: store, metrics: metrics}
}

func (s *activityService) Record(ctx context.Context, repos *repository.Repositories, activity *model.UserActivity) StepResult {
	if err := repos.Activities.Create(ctx, activity); err != nil {
		log.Warn().Err(err).
			Str("user_id", activity.UserID).
			Str("activity_type", activity.ActivityType).
			Msg("Failed to log user activity")
		s.metrics.ObserveActivityFailure()
		return Degraded("activity log insert failed", err)
	}
	return OK()
}

func (s *activityService) ListRecent(ctx context.Context, userID string, limit int, authToken string) ([]dto.UserActivityDTO, error) {
	if userID == "" {
		return nil, newValidationError("user_id", "is required")
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	activities, err := repos.Activities.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("ListRecent: query failed")
		return nil, &DependencyError{Op: "list activities", Err: err}
	}

	dtos := make([]dto.UserActivityDTO, len(activities))
	for i := range activities {
		if err := copier.Copy(&dtos[i], &activities[i]); err != nil {
			return nil, fmt.Errorf("error preparing activities response: %w", err)
		}
	}
	return dtos, nil
}
