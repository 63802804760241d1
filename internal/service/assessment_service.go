package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/rs/zerolog/log"
)

type AssessmentService interface {
	ListAssessments(ctx context.Context, authToken string) ([]dto.AssessmentSummaryDTO, error)
	GetAssessment(ctx context.Context, id string, authToken string) (*dto.AssessmentDetailDTO, error)
}

type assessmentService struct {
	store repository.Provider
}

func NewAssessmentService(store repository.Provider) AssessmentService {
	return &assessmentService{store: store}
}

func (s *assessmentService) ListAssessments(ctx context.Context, authToken string) ([]dto.AssessmentSummaryDTO, error) {
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	withCount, err := repos.Assessments.FindAllWithQuestionCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get assessments with question count from repository")
		return nil, &DependencyError{Op: "list assessments", Err: err}
	}

	dtos := make([]dto.AssessmentSummaryDTO, 0, len(withCount))
	for _, a := range withCount {
		dtos = append(dtos, dto.AssessmentSummaryDTO{
			ID:            a.ID,
			Code:          a.Code,
			Title:         a.Title,
			Description:   a.Description,
			QuestionCount: a.QuestionCount,
			CreatedAt:     a.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *assessmentService) GetAssessment(ctx context.Context, id string, authToken string) (*dto.AssessmentDetailDTO, error) {
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	assessment, err := repos.Assessments.FindByIDWithQuestions(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("assessment_id", id).Msg("Failed to get assessment details from repository")
		return nil, readError("get assessment", err)
	}

	var resp dto.AssessmentDetailDTO
	if err := copier.Copy(&resp, assessment); err != nil {
		log.Error().Err(err).Msg("Failed to copy Assessment model to AssessmentDetailDTO")
		return nil, fmt.Errorf("error preparing assessment response: %w", err)
	}
	if resp.Questions == nil {
		resp.Questions = []dto.QuestionDTO{}
	}
	return &resp, nil
}
