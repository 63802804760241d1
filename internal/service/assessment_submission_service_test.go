package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionFixture(llm *fakeLLM) (*fakeStore, AssessmentSubmissionService) {
	store := newFakeStore()
	cfg := &config.Config{}
	metrics := observability.NewMetrics()
	svc := NewAssessmentSubmissionService(
		store,
		NewRiskClassifier(),
		NewEnrichmentService(llm, cfg, metrics),
		NewActivityService(store, metrics),
		metrics,
	)
	return store, svc
}

func responses(values ...any) []dto.AssessmentResponseItem {
	out := make([]dto.AssessmentResponseItem, 0, len(values))
	for i, v := range values {
		out = append(out, dto.AssessmentResponseItem{QuestionID: "q" + string(rune('1'+i)), Value: v})
	}
	return out
}

func TestSubmitAssessment_EndToEnd(t *testing.T) {
	tests := []struct {
		name      string
		values    []any
		wantScore int
		wantRisk  string
	}{
		{"low", []any{float64(1), float64(2)}, 3, RiskLow},
		{"severe", []any{float64(12), float64(10)}, 22, RiskSevere},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{reply: `{"summary":"noted","recommendations":["rest"]}`}
			store, svc := newSubmissionFixture(llm)
			store.addAssessment("phq", model.CodePHQ9)

			result, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
				UserID:       "user-1",
				AssessmentID: "phq",
				Responses:    responses(tt.values...),
			}, "")
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, result.Assessment.TotalScore)
			assert.Equal(t, tt.wantRisk, result.Assessment.RiskLevel)
			assert.Equal(t, "ua-1", result.Assessment.ID)
			assert.Equal(t, "noted", result.Assessment.AIAnalysis["summary"])
			assert.True(t, result.Enrichment.IsOK())
			assert.True(t, result.Activity.IsOK())

			require.Len(t, store.responses.batches, 1)
			sum := 0
			for _, row := range store.responses.batches[0] {
				assert.Equal(t, "ua-1", row.UserAssessmentID)
				sum += row.ResponseValue
			}
			assert.Equal(t, tt.wantScore, sum)

			require.Len(t, store.activities.created, 1)
			activity := store.activities.created[0]
			assert.Equal(t, model.ActivityTypeAssessment, activity.ActivityType)
			assert.Equal(t, "Completed PHQ-9 Assessment", activity.Title)
			assert.Equal(t, tt.wantScore, activity.Details["score"])
			assert.Equal(t, tt.wantRisk, activity.Details["risk_level"])
			assert.Equal(t, "ua-1", activity.Details["user_assessment_id"])

			require.Len(t, llm.requests, 1)
			assert.True(t, llm.requests[0].JSON)
			assert.Contains(t, llm.requests[0].Messages[0].Content, "PHQ-9")
		})
	}
}

func TestSubmitAssessment_ValidationFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.AssessmentSubmitDTO
		field string
	}{
		{"missing user", dto.AssessmentSubmitDTO{AssessmentID: "phq", Responses: responses(1)}, "user_id"},
		{"missing assessment", dto.AssessmentSubmitDTO{UserID: "u", Responses: responses(1)}, "assessment_id"},
		{"empty responses", dto.AssessmentSubmitDTO{UserID: "u", AssessmentID: "phq"}, "responses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{}
			store, svc := newSubmissionFixture(llm)
			store.addAssessment("phq", model.CodePHQ9)

			_, err := svc.SubmitAssessment(context.Background(), tt.req, "")

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, store.writes())
			assert.Empty(t, store.tokens, "store never consulted")
			assert.Empty(t, llm.requests)
		})
	}
}

func TestSubmitAssessment_ForeignQuestionRejected(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{reply: `{}`})
	store.addAssessment("gad", model.CodeGAD7, "g1", "g2")

	_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID:       "user-1",
		AssessmentID: "gad",
		Responses: []dto.AssessmentResponseItem{
			{QuestionID: "g1", Value: 1},
			{QuestionID: "phq-3", Value: 2},
		},
	}, "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "responses[1].question_id", vErr.Field)
	assert.Zero(t, store.writes())
}

func TestSubmitAssessment_LLMOutageStillPersists(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{err: errors.New("connection refused")})
	store.addAssessment("phq", model.CodePHQ9)

	result, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID: "user-1", AssessmentID: "phq", Responses: responses(float64(1), float64(2)),
	}, "")
	require.NoError(t, err)

	assert.True(t, result.Enrichment.IsDegraded())
	assert.Equal(t, AnalysisUnavailable, result.Assessment.AIAnalysis["error"])
	require.Len(t, store.userAssessments.created, 1)
	assert.Equal(t, AnalysisUnavailable, store.userAssessments.created[0].AIAnalysis["error"])
	require.Len(t, store.responses.batches, 1)
	assert.Len(t, store.responses.batches[0], 2)
}

func TestSubmitAssessment_NonJSONCompletionWrapped(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{reply: "Take care of yourself."})
	store.addAssessment("phq", model.CodePHQ9)

	result, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID: "user-1", AssessmentID: "phq", Responses: responses(float64(1)),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Take care of yourself.", result.Assessment.AIAnalysis["summary"])
	assert.True(t, result.Enrichment.IsDegraded())
}

func TestSubmitAssessment_ActivityFailureStillSucceeds(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{reply: `{"summary":"ok"}`})
	store.addAssessment("phq", model.CodePHQ9)
	store.activities.err = errors.New("insert failed")

	result, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID: "user-1", AssessmentID: "phq", Responses: responses(float64(3)),
	}, "")
	require.NoError(t, err)
	assert.True(t, result.Activity.IsDegraded())
	assert.EqualError(t, result.Activity.Err, "insert failed")
	assert.Equal(t, 3, result.Assessment.TotalScore)
}

func TestSubmitAssessment_DependencyFailures(t *testing.T) {
	t.Run("unknown assessment", func(t *testing.T) {
		store, svc := newSubmissionFixture(&fakeLLM{})
		_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
			UserID: "user-1", AssessmentID: "nope", Responses: responses(1),
		}, "")

		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, "lookup assessment", depErr.Op)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, store.writes())
	})

	t.Run("store unreachable", func(t *testing.T) {
		store, svc := newSubmissionFixture(&fakeLLM{})
		store.assessments.err = errors.New("dial tcp: connection refused")
		_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
			UserID: "user-1", AssessmentID: "phq", Responses: responses(1),
		}, "")

		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Zero(t, store.writes())
	})

	t.Run("aggregate insert fails", func(t *testing.T) {
		store, svc := newSubmissionFixture(&fakeLLM{reply: "{}"})
		store.addAssessment("phq", model.CodePHQ9)
		store.userAssessments.err = errors.New("rls violation")
		_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
			UserID: "user-1", AssessmentID: "phq", Responses: responses(1),
		}, "")

		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, "persist user assessment", depErr.Op)
		assert.Empty(t, depErr.UserAssessmentID)
		assert.Empty(t, store.responses.batches)
		assert.Empty(t, store.activities.created)
	})

	t.Run("itemized insert fails", func(t *testing.T) {
		store, svc := newSubmissionFixture(&fakeLLM{reply: "{}"})
		store.addAssessment("phq", model.CodePHQ9)
		store.responses.err = errors.New("fk violation")
		_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
			UserID: "user-1", AssessmentID: "phq", Responses: responses(1),
		}, "")

		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, "ua-1", depErr.UserAssessmentID)
		assert.Len(t, store.userAssessments.created, 1, "aggregate row is not rolled back")
		assert.Empty(t, store.activities.created)
	})
}

func TestSubmitAssessment_PropagatesIdentity(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{reply: "{}"})
	store.addAssessment("phq", model.CodePHQ9)

	_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID: "user-1", AssessmentID: "phq", Responses: responses(1),
	}, "caller-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"caller-token"}, store.tokens)
}

func TestSubmitAssessment_BadTokenIsValidationError(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{})
	store.forErr = errors.New("invalid caller identity: token is malformed")

	_, err := svc.SubmitAssessment(context.Background(), dto.AssessmentSubmitDTO{
		UserID: "user-1", AssessmentID: "phq", Responses: responses(1),
	}, "garbage")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "authorization", vErr.Field)
}

func TestGetAndListUserAssessments(t *testing.T) {
	store, svc := newSubmissionFixture(&fakeLLM{reply: "{}"})
	store.addAssessment("phq", model.CodePHQ9)
	ctx := context.Background()

	first, err := svc.SubmitAssessment(ctx, dto.AssessmentSubmitDTO{UserID: "user-1", AssessmentID: "phq", Responses: responses(1)}, "")
	require.NoError(t, err)
	_, err = svc.SubmitAssessment(ctx, dto.AssessmentSubmitDTO{UserID: "user-1", AssessmentID: "phq", Responses: responses(5)}, "")
	require.NoError(t, err)

	list, err := svc.ListUserAssessments(ctx, "user-1", "", 0, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].TotalScore)

	store.userAssessments.created[0].Responses = []model.UserAssessmentResponse{{ID: "r1", QuestionID: "q1", ResponseValue: 1}}
	detail, err := svc.GetUserAssessment(ctx, first.Assessment.ID, "")
	require.NoError(t, err)
	require.Len(t, detail.Responses, 1)
	assert.Equal(t, "q1", detail.Responses[0].QuestionID)

	_, err = svc.GetUserAssessment(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListUserAssessments(ctx, "", "", 0, "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
