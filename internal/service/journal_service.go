package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type JournalService interface {
	// Analyze extracts likes, dislikes, important terms and panic words.
	Analyze(ctx context.Context, content string) (datatypes.JSONMap, StepResult, error)
	Create(ctx context.Context, req dto.JournalCreateDTO, authToken string) (*dto.JournalDTO, error)
	Latest(ctx context.Context, userID string, authToken string) (*dto.JournalDTO, error)
}

type journalService struct {
	store      repository.Provider
	enricher   EnrichmentService
	activities ActivityService
}

func NewJournalService(store repository.Provider, enricher EnrichmentService, activities ActivityService) JournalService {
	return &journalService{store: store, enricher: enricher, activities: activities}
}

func (s *journalService) Analyze(ctx context.Context, content string) (datatypes.JSONMap, StepResult, error) {
	if content == "" {
		return nil, StepResult{}, newValidationError("content", "is required")
	}
	analysis, step := s.enricher.AnalyzeJournal(ctx, content)
	return analysis, step, nil
}

func (s *journalService) Create(ctx context.Context, req dto.JournalCreateDTO, authToken string) (*dto.JournalDTO, error) {
	switch {
	case req.UserID == "":
		return nil, newValidationError("user_id", "is required")
	case req.Content == "":
		return nil, newValidationError("content", "is required")
	}
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}

	analysis, step := s.enricher.AnalyzeJournal(ctx, req.Content)
	journal := &model.Journal{
		UserID:     req.UserID,
		Title:      req.Title,
		Content:    req.Content,
		AIAnalysis: analysis,
	}
	if err := repos.Journals.Create(ctx, journal); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("CreateJournal: failed to insert journal")
		return nil, &DependencyError{Op: "persist journal", Err: err}
	}

	title := req.Title
	if title == "" {
		title = "Wrote a journal entry"
	}
	s.activities.Record(ctx, repos, &model.UserActivity{
		UserID:       req.UserID,
		ActivityType: model.ActivityTypeJournal,
		Title:        title,
		Details: datatypes.JSONMap{
			"journal_id":  journal.ID,
			"panic_words": analysis["panic_words"],
		},
	})
	log.Info().Str("journal_id", journal.ID).Str("analysis", string(step.Status)).Msg("Journal entry saved")

	return journalDTO(journal)
}

func (s *journalService) Latest(ctx context.Context, userID string, authToken string) (*dto.JournalDTO, error) {
	repos, err := scopedRepos(s.store, authToken)
	if err != nil {
		return nil, err
	}
	journal, err := repos.Journals.FindLatest(ctx, userID)
	if err != nil {
		return nil, readError("latest journal", err)
	}
	return journalDTO(journal)
}

func journalDTO(j *model.Journal) (*dto.JournalDTO, error) {
	var resp dto.JournalDTO
	if err := copier.Copy(&resp, j); err != nil {
		return nil, fmt.Errorf("error preparing journal response: %w", err)
	}
	return &resp, nil
}
