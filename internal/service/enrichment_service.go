package service

import (
	"context"
	"errors"
	"time"

	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	flowAssessment = "assessment"
	flowJournal    = "journal"
)

var errEmptyCompletion = errors.New("llm returned an empty completion")

// EnrichmentService asks the LLM for structured commentary. It never fails:
// problems are reported as a Degraded StepResult next to a placeholder value.
type EnrichmentService interface {
	EnrichAssessment(ctx context.Context, code string, totalScore int, riskLevel string, responses []dto.AssessmentResponseItem) (datatypes.JSONMap, StepResult)
	AnalyzeJournal(ctx context.Context, content string) (datatypes.JSONMap, StepResult)
}

type enrichmentService struct {
	llm     LLMService
	timeout time.Duration
	metrics *observability.Metrics
}

func NewEnrichmentService(llm LLMService, cfg *config.Config, metrics *observability.Metrics) EnrichmentService {
	return &enrichmentService{llm: llm, timeout: cfg.LLM.EnrichmentTimeout, metrics: metrics}
}

func (s *enrichmentService) EnrichAssessment(ctx context.Context, code string, totalScore int, riskLevel string, responses []dto.AssessmentResponseItem) (datatypes.JSONMap, StepResult) {
	prompt := BuildAssessmentPrompt(code, totalScore, riskLevel, responses)
	return s.complete(ctx, flowAssessment, prompt, parseCompletion)
}

func (s *enrichmentService) AnalyzeJournal(ctx context.Context, content string) (datatypes.JSONMap, StepResult) {
	return s.complete(ctx, flowJournal, BuildJournalPrompt(content), parseJournalCompletion)
}

func (s *enrichmentService) complete(ctx context.Context, flow, prompt string, parse func(string) (datatypes.JSONMap, bool)) (datatypes.JSONMap, StepResult) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.llm.Complete(ctx, CompletionRequest{
		Messages: []ChatMessage{{Role: RoleUser, Content: prompt}},
		JSON:     true,
	})
	if err != nil {
		log.Warn().Err(err).Str("flow", flow).Str("provider", s.llm.Provider()).Msg("LLM enrichment failed, using placeholder")
		s.metrics.ObserveEnrichment(flow, string(StepDegraded))
		return UnavailableAnalysis(), Degraded("llm unavailable", err)
	}

	analysis, structured := parse(text)
	if _, failed := analysis["error"]; failed && !structured {
		log.Warn().Str("flow", flow).Msg("LLM returned an empty completion")
		s.metrics.ObserveEnrichment(flow, string(StepDegraded))
		return analysis, Degraded("empty completion", errEmptyCompletion)
	}
	if !structured {
		log.Warn().Str("flow", flow).Msg("LLM completion was not JSON, wrapped as summary")
		s.metrics.ObserveEnrichment(flow, string(StepDegraded))
		return analysis, Degraded("unstructured completion", nil)
	}

	s.metrics.ObserveEnrichment(flow, string(StepOK))
	return analysis, OK()
}
