package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InstrumentDefinition is reference data for one screening instrument.
type InstrumentDefinition struct {
	Code        string
	Title       string
	Description string
	Questions   []string
}

// StandardInstruments are the instruments the frontend links to.
var StandardInstruments = []InstrumentDefinition{
	{
		Code:        model.CodePHQ9,
		Title:       "PHQ-9 Depression Screening",
		Description: "Over the last 2 weeks, how often have you been bothered by any of the following problems?",
		Questions: []string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
			"Trouble falling or staying asleep, or sleeping too much",
			"Feeling tired or having little energy",
			"Poor appetite or overeating",
			"Feeling bad about yourself, or that you are a failure or have let yourself or your family down",
			"Trouble concentrating on things, such as reading or watching television",
			"Moving or speaking so slowly that other people could have noticed, or being so fidgety or restless that you have been moving around a lot more than usual",
			"Thoughts that you would be better off dead or of hurting yourself in some way",
		},
	},
	{
		Code:        model.CodeGAD7,
		Title:       "GAD-7 Anxiety Screening",
		Description: "Over the last 2 weeks, how often have you been bothered by the following problems?",
		Questions: []string{
			"Feeling nervous, anxious, or on edge",
			"Not being able to stop or control worrying",
			"Worrying too much about different things",
			"Trouble relaxing",
			"Being so restless that it is hard to sit still",
			"Becoming easily annoyed or irritable",
			"Feeling afraid as if something awful might happen",
		},
	},
	{
		Code:        model.CodeCSSRS,
		Title:       "Columbia Suicide Severity Rating Scale (Screener)",
		Description: "In the past month. Answer 1 for yes and 0 for no.",
		Questions: []string{
			"Have you wished you were dead or wished you could go to sleep and not wake up?",
			"Have you actually had any thoughts of killing yourself?",
			"Have you been thinking about how you might do this?",
			"Have you had these thoughts and had some intention of acting on them?",
			"Have you started to work out or worked out the details of how to kill yourself? Do you intend to carry out this plan?",
			"Have you ever done anything, started to do anything, or prepared to do anything to end your life?",
		},
	},
}

type SeedService interface {
	// Seed inserts every instrument whose code is not stored yet and returns
	// the codes it created.
	Seed(ctx context.Context, instruments []InstrumentDefinition) ([]string, error)
}

type seedService struct {
	store repository.Provider
}

func NewSeedService(store repository.Provider) SeedService {
	return &seedService{store: store}
}

func (s *seedService) Seed(ctx context.Context, instruments []InstrumentDefinition) ([]string, error) {
	repos, err := s.store.For("")
	if err != nil {
		return nil, err
	}

	var created []string
	for _, def := range instruments {
		if err := validateInstrument(def); err != nil {
			return created, err
		}
		_, err := repos.Assessments.FindByCode(ctx, def.Code)
		if err == nil {
			log.Info().Str("code", def.Code).Msg("Assessment already present, skipping")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up assessment %s: %w", def.Code, err)
		}

		assessment := model.Assessment{
			Code:        def.Code,
			Title:       def.Title,
			Description: def.Description,
		}
		for i, text := range def.Questions {
			assessment.Questions = append(assessment.Questions, model.Question{
				QuestionText:  text,
				QuestionOrder: i + 1,
			})
		}
		if err := repos.Assessments.Create(ctx, &assessment); err != nil {
			log.Error().Err(err).Str("code", def.Code).Msg("Failed to create assessment in database")
			return created, fmt.Errorf("database error creating assessment %s: %w", def.Code, err)
		}
		log.Info().Str("code", def.Code).Str("assessment_id", assessment.ID).Int("questions", len(assessment.Questions)).Msg("Assessment seeded")
		created = append(created, def.Code)
	}
	return created, nil
}

func validateInstrument(def InstrumentDefinition) error {
	if NormalizeCode(def.Code) == "" {
		return fmt.Errorf("instrument code is required")
	}
	if def.Title == "" {
		return fmt.Errorf("instrument %s: title is required", def.Code)
	}
	if len(def.Questions) == 0 {
		return fmt.Errorf("instrument %s: at least one question is required", def.Code)
	}
	seen := make(map[string]bool, len(def.Questions))
	for _, q := range def.Questions {
		if q == "" {
			return fmt.Errorf("instrument %s: empty question text", def.Code)
		}
		if seen[q] {
			return fmt.Errorf("instrument %s: duplicate question %q", def.Code, q)
		}
		seen[q] = true
	}
	return nil
}
