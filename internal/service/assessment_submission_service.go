package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var submissionTracer = otel.Tracer("wellrelay.assessment")

// SubmissionResult is a persisted submission plus the outcome of its
// best-effort steps.
type SubmissionResult struct {
	Assessment dto.UserAssessmentDTO
	Enrichment StepResult
	Activity   StepResult
}

type AssessmentSubmissionService interface {
	SubmitAssessment(ctx context.Context, req dto.AssessmentSubmitDTO, authToken string) (*SubmissionResult, error)
	GetUserAssessment(ctx context.Context, id string, authToken string) (*dto.UserAssessmentDetailDTO, error)
	ListUserAssessments(ctx context.Context, userID, assessmentID string, limit int, authToken string) ([]dto.UserAssessmentDTO, error)
}

type assessmentSubmissionService struct {
	store      repository.Provider
	classifier RiskClassifier
	enricher   EnrichmentService
	activities ActivityService
	metrics    *observability.Metrics
}

func NewAssessmentSubmissionService(
	store repository.Provider,
	classifier RiskClassifier,
	enricher EnrichmentService,
	activities ActivityService,
	metrics *observability.Metrics,
) AssessmentSubmissionService {
	return &assessmentSubmissionService{
		store:      store,
		classifier: classifier,
		enricher:   enricher,
		activities: activities,
		metrics:    metrics,
	}
}

// SubmitAssessment scores, classifies, enriches and persists one submission.
// Every store call runs under the identity carried by authToken.
func (s *assessmentSubmissionService) SubmitAssessment(ctx context.Context, req dto.AssessmentSubmitDTO, authToken string) (*SubmissionResult, error) {
	ctx, span := submissionTracer.Start(ctx, "assessment.Submit")
	defer span.End()

	result, err := s.submit(ctx, req, authToken)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			s.metrics.ObserveSubmissionError("validation")
		} else {
			s.metrics.ObserveSubmissionError("dependency")
		}
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("assessment.risk_level", result.Assessment.RiskLevel),
		attribute.Int("assessment.total_score", result.Assessment.TotalScore),
	)
	return result, nil
}

func (s *assessmentSubmissionService) submit(ctx context.Context, req dto.AssessmentSubmitDTO, authToken string) (*SubmissionResult, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	logger := log.With().
		Str("user_id", req.UserID).
		Str("assessment_id", req.AssessmentID).
		Bool("token_present", authToken != "").
		Logger()

	totalScore := TotalScore(req.Responses)

	assessment, err := repos.Assessments.FindByID(ctx, req.AssessmentID)
	if err != nil {
		logger.Error().Err(err).Msg("SubmitAssessment: assessment lookup failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("assessment %s: %w", req.AssessmentID, ErrNotFound)
		}
		return nil, &DependencyError{Op: "lookup assessment", Err: err}
	}

	questions, err := repos.Questions.FindByAssessmentID(ctx, assessment.ID)
	if err != nil {
		logger.Error().Err(err).Msg("SubmitAssessment: question lookup failed")
		return nil, &DependencyError{Op: "lookup questions", Err: err}
	}
	if err := checkQuestionMembership(req.Responses, questions); err != nil {
		return nil, err
	}

	riskLevel := s.classifier.Classify(assessment.Code, totalScore)
	analysis, enrichment := s.enricher.EnrichAssessment(ctx, assessment.Code, totalScore, riskLevel, req.Responses)

	ua := &model.UserAssessment{
		UserID:       req.UserID,
		AssessmentID: assessment.ID,
		TotalScore:   totalScore,
		RiskLevel:    riskLevel,
		AIAnalysis:   analysis,
	}
	if step := persistStep(repos.UserAssessments.Create(ctx, ua)); step.IsFatal() {
		logger.Error().Err(step.Err).Msg("SubmitAssessment: failed to insert user assessment")
		return nil, &DependencyError{Op: "persist user assessment", Err: step.Err}
	}

	rows := make([]model.UserAssessmentResponse, 0, len(req.Responses))
	for _, r := range req.Responses {
		rows = append(rows, model.UserAssessmentResponse{
			UserAssessmentID: ua.ID,
			QuestionID:       r.QuestionID,
			ResponseValue:    ScoreValue(r.Value),
			ResponseText:     r.Text,
		})
	}
	if step := persistStep(repos.Responses.CreateBatch(ctx, rows)); step.IsFatal() {
		// The aggregate row stays behind without its itemized responses.
		logger.Error().Err(step.Err).Str("user_assessment_id", ua.ID).Msg("SubmitAssessment: failed to insert responses, aggregate row left orphaned")
		return nil, &DependencyError{Op: "persist responses", Err: step.Err, UserAssessmentID: ua.ID}
	}

	activity := s.activities.Record(ctx, repos, &model.UserActivity{
		UserID:       req.UserID,
		ActivityType: model.ActivityTypeAssessment,
		Title:        fmt.Sprintf("Completed %s Assessment", assessment.Code),
		Details: datatypes.JSONMap{
			"score":              totalScore,
			"risk_level":         riskLevel,
			"assessment_id":      assessment.ID,
			"user_assessment_id": ua.ID,
		},
	})

	s.metrics.ObserveSubmission(NormalizeCode(assessment.Code), riskLevel)
	logger.Info().
		Str("user_assessment_id", ua.ID).
		Int("total_score", totalScore).
		Str("risk_level", riskLevel).
		Str("enrichment", string(enrichment.Status)).
		Str("activity", string(activity.Status)).
		Msg("Assessment submitted")

	result := &SubmissionResult{Enrichment: enrichment, Activity: activity}
	if err := copier.Copy(&result.Assessment, ua); err != nil {
		return nil, fmt.Errorf("error preparing submission response: %w", err)
	}
	return result, nil
}

func (s *assessmentSubmissionService) GetUserAssessment(ctx context.Context, id string, authToken string) (*dto.UserAssessmentDetailDTO, error) {
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	ua, err := repos.UserAssessments.FindByIDWithDetails(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("user_assessment_id", id).Msg("GetUserAssessment: lookup failed")
		return nil, readError("get user assessment", err)
	}

	var resp dto.UserAssessmentDetailDTO
	if err := copier.Copy(&resp, ua); err != nil {
		return nil, fmt.Errorf("error preparing user assessment response: %w", err)
	}
	if ua.Assessment != nil {
		resp.AssessmentCode = ua.Assessment.Code
	}
	if resp.Responses == nil {
		resp.Responses = []dto.UserAssessmentResponseDTO{}
	}
	return &resp, nil
}

func (s *assessmentSubmissionService) ListUserAssessments(ctx context.Context, userID, assessmentID string, limit int, authToken string) ([]dto.UserAssessmentDTO, error) {
	if userID == "" {
		return nil, newValidationError("user_id", "is required")
	}
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	rows, err := repos.UserAssessments.FindAllByUser(ctx, repository.UserAssessmentFilter{
		UserID:       userID,
		AssessmentID: assessmentID,
		Limit:        limit,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("ListUserAssessments: query failed")
		return nil, &DependencyError{Op: "list user assessments", Err: err}
	}

	dtos := make([]dto.UserAssessmentDTO, len(rows))
	for i := range rows {
		if err := copier.Copy(&dtos[i], &rows[i]); err != nil {
			return nil, fmt.Errorf("error preparing user assessments response: %w", err)
		}
	}
	return dtos, nil
}

func validateSubmission(req dto.AssessmentSubmitDTO) error {
	switch {
	case req.UserID == "":
		return newValidationError("user_id", "is required")
	case req.AssessmentID == "":
		return newValidationError("assessment_id", "is required")
	case len(req.Responses) == 0:
		return newValidationError("responses", "must contain at least one response")
	}
	return nil
}

// checkQuestionMembership only applies to assessments with registered questions.
func checkQuestionMembership(responses []dto.AssessmentResponseItem, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for i, r := range responses {
		if _, ok := known[r.QuestionID]; !ok {
			return newValidationError(fmt.Sprintf("responses[%d].question_id", i),
				fmt.Sprintf("question %q does not belong to this assessment", r.QuestionID))
		}
	}
	return nil
}

func persistStep(err error) StepResult {
	if err != nil {
		return Fatal(err)
	}
	return OK()
}
