package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournalFixture(llm *fakeLLM) (*fakeStore, JournalService) {
	store := newFakeStore()
	enricher := NewEnrichmentService(llm, &config.Config{}, nil)
	return store, NewJournalService(store, enricher, NewActivityService(store, nil))
}

func TestJournalService_Analyze(t *testing.T) {
	_, svc := newJournalFixture(&fakeLLM{reply: `{"likes":["yoga"],"dislikes":["noise"],"important_terms":["exams"],"panic_words":["HELP"]}`})

	analysis, step, err := svc.Analyze(context.Background(), "I enjoyed yoga. I hated the noise. HELP!")
	require.NoError(t, err)
	assert.True(t, step.IsOK())
	assert.Equal(t, []any{"HELP"}, analysis["panic_words"])

	_, _, err = svc.Analyze(context.Background(), "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestJournalService_CreateAndLatest(t *testing.T) {
	store, svc := newJournalFixture(&fakeLLM{reply: `{"panic_words":["HELP"]}`})
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.JournalCreateDTO{UserID: "user-1", Content: "HELP"}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "journal-1", created.ID)
	assert.Equal(t, []any{"HELP"}, created.AIAnalysis["panic_words"])

	require.Len(t, store.activities.created, 1)
	assert.Equal(t, model.ActivityTypeJournal, store.activities.created[0].ActivityType)
	assert.Equal(t, "journal-1", store.activities.created[0].Details["journal_id"])

	latest, err := svc.Latest(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "HELP", latest.Content)

	_, err = svc.Latest(ctx, "someone-else", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalService_CreateDegradesWhenLLMDown(t *testing.T) {
	store, svc := newJournalFixture(&fakeLLM{err: errors.New("down")})

	created, err := svc.Create(context.Background(), dto.JournalCreateDTO{UserID: "user-1", Content: "today"}, "")
	require.NoError(t, err)
	assert.Equal(t, AnalysisUnavailable, created.AIAnalysis["error"])
	assert.Len(t, store.journals.created, 1)
}

func TestJournalService_CreateStoreFailure(t *testing.T) {
	store, svc := newJournalFixture(&fakeLLM{reply: "{}"})
	store.journals.err = errors.New("rls violation")

	_, err := svc.Create(context.Background(), dto.JournalCreateDTO{UserID: "user-1", Content: "today"}, "")
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Empty(t, store.activities.created)
}
