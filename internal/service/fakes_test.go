package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/repository"
	"gorm.io/gorm"
)

// fakeStore hands out the same in-memory repositories for every identity and
// remembers which tokens were used.
type fakeStore struct {
	mu     sync.Mutex
	tokens []string
	forErr error

	assessments     *fakeAssessmentRepo
	questions       *fakeQuestionRepo
	userAssessments *fakeUserAssessmentRepo
	responses       *fakeResponseRepo
	activities      *fakeActivityRepo
	journals        *fakeJournalRepo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assessments:     &fakeAssessmentRepo{byID: map[string]*model.Assessment{}},
		questions:       &fakeQuestionRepo{byAssessment: map[string][]model.Question{}},
		userAssessments: &fakeUserAssessmentRepo{},
		responses:       &fakeResponseRepo{},
		activities:      &fakeActivityRepo{},
		journals:        &fakeJournalRepo{},
	}
}

func (s *fakeStore) For(token string) (*repository.Repositories, error) {
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
	if s.forErr != nil {
		return nil, s.forErr
	}
	return &repository.Repositories{
		Assessments:     s.assessments,
		Questions:       s.questions,
		UserAssessments: s.userAssessments,
		Responses:       s.responses,
		Activities:      s.activities,
		Journals:        s.journals,
	}, nil
}

func (s *fakeStore) writes() int {
	return len(s.userAssessments.created) + len(s.responses.batches) + len(s.activities.created) + len(s.journals.created) + len(s.assessments.created)
}

func (s *fakeStore) addAssessment(id, code string, questionIDs ...string) {
	s.assessments.byID[id] = &model.Assessment{ID: id, Code: code, Title: code}
	for i, qid := range questionIDs {
		s.questions.byAssessment[id] = append(s.questions.byAssessment[id], model.Question{ID: qid, AssessmentID: id, QuestionOrder: i + 1})
	}
}

type fakeAssessmentRepo struct {
	byID    map[string]*model.Assessment
	created []*model.Assessment
	err     error
}

func (r *fakeAssessmentRepo) Create(_ context.Context, a *model.Assessment) error {
	if r.err != nil {
		return r.err
	}
	if a.ID == "" {
		a.ID = fmt.Sprintf("assessment-%d", len(r.created)+1)
	}
	r.created = append(r.created, a)
	r.byID[a.ID] = a
	return nil
}

func (r *fakeAssessmentRepo) FindByID(_ context.Context, id string) (*model.Assessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAssessmentRepo) FindByIDWithQuestions(ctx context.Context, id string) (*model.Assessment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeAssessmentRepo) FindByCode(_ context.Context, code string) (*model.Assessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.byID {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssessmentRepo) FindAllWithQuestionCount(_ context.Context) ([]repository.AssessmentWithQuestionCount, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []repository.AssessmentWithQuestionCount
	for _, a := range r.byID {
		out = append(out, repository.AssessmentWithQuestionCount{Assessment: *a, QuestionCount: len(a.Questions)})
	}
	return out, nil
}

type fakeQuestionRepo struct {
	byAssessment map[string][]model.Question
	err          error
}

func (r *fakeQuestionRepo) FindByAssessmentID(_ context.Context, assessmentID string) ([]model.Question, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byAssessment[assessmentID], nil
}

type fakeUserAssessmentRepo struct {
	mu      sync.Mutex
	created []*model.UserAssessment
	err     error
}

func (r *fakeUserAssessmentRepo) Create(_ context.Context, ua *model.UserAssessment) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ua.ID = fmt.Sprintf("ua-%d", len(r.created)+1)
	r.created = append(r.created, ua)
	return nil
}

func (r *fakeUserAssessmentRepo) FindByIDWithDetails(_ context.Context, id string) (*model.UserAssessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, ua := range r.created {
		if ua.ID == id {
			return ua, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserAssessmentRepo) FindAllByUser(_ context.Context, filter repository.UserAssessmentFilter) ([]model.UserAssessment, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.UserAssessment
	for i := len(r.created) - 1; i >= 0; i-- {
		ua := r.created[i]
		if ua.UserID != filter.UserID || (filter.AssessmentID != "" && ua.AssessmentID != filter.AssessmentID) {
			continue
		}
		out = append(out, *ua)
	}
	return out, nil
}

type fakeResponseRepo struct {
	mu      sync.Mutex
	batches [][]model.UserAssessmentResponse
	err     error
}

func (r *fakeResponseRepo) CreateBatch(_ context.Context, rows []model.UserAssessmentResponse) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, rows)
	return nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	created []*model.UserActivity
	err     error
}

func (r *fakeActivityRepo) Create(_ context.Context, a *model.UserActivity) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, a)
	return nil
}

func (r *fakeActivityRepo) FindRecentByUser(_ context.Context, userID string, limit int) ([]model.UserActivity, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.UserActivity
	for i := len(r.created) - 1; i >= 0 && len(out) < limit; i-- {
		if r.created[i].UserID == userID {
			out = append(out, *r.created[i])
		}
	}
	return out, nil
}

type fakeJournalRepo struct {
	created []*model.Journal
	err     error
}

func (r *fakeJournalRepo) Create(_ context.Context, j *model.Journal) error {
	if r.err != nil {
		return r.err
	}
	j.ID = fmt.Sprintf("journal-%d", len(r.created)+1)
	r.created = append(r.created, j)
	return nil
}

func (r *fakeJournalRepo) FindLatest(_ context.Context, userID string) (*model.Journal, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := len(r.created) - 1; i >= 0; i-- {
		if userID == "" || r.created[i].UserID == userID {
			return r.created[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []CompletionRequest
}

func (f *fakeLLM) Provider() string { return "fake" }

func (f *fakeLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
