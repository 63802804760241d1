package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/middleware"
	"github.com/lshigami/wellrelay/internal/model"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAssessmentService struct {
	list   []dto.AssessmentSummaryDTO
	detail *dto.AssessmentDetailDTO
	err    error
}

func (s *stubAssessmentService) ListAssessments(_ context.Context, _ string) ([]dto.AssessmentSummaryDTO, error) {
	return s.list, s.err
}

func (s *stubAssessmentService) GetAssessment(_ context.Context, _ string, _ string) (*dto.AssessmentDetailDTO, error) {
	return s.detail, s.err
}

type stubSubmissionService struct {
	result    *service.SubmissionResult
	err       error
	lastReq   dto.AssessmentSubmitDTO
	lastToken string
	lastLimit int
	lastQuery string
}

func (s *stubSubmissionService) SubmitAssessment(_ context.Context, req dto.AssessmentSubmitDTO, token string) (*service.SubmissionResult, error) {
	s.lastReq = req
	s.lastToken = token
	return s.result, s.err
}

func (s *stubSubmissionService) GetUserAssessment(_ context.Context, id string, token string) (*dto.UserAssessmentDetailDTO, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return &dto.UserAssessmentDetailDTO{ID: id, TotalScore: 3, RiskLevel: service.RiskLow}, nil
}

func (s *stubSubmissionService) ListUserAssessments(_ context.Context, userID, assessmentID string, limit int, token string) ([]dto.UserAssessmentDTO, error) {
	s.lastLimit = limit
	s.lastQuery = assessmentID
	s.lastToken = token
	return []dto.UserAssessmentDTO{{UserID: userID, AssessmentID: assessmentID}}, s.err
}

type stubActivityService struct {
	lastLimit int
}

func (s *stubActivityService) Record(_ context.Context, _ *repository.Repositories, _ *model.UserActivity) service.StepResult {
	return service.OK()
}

func (s *stubActivityService) ListRecent(_ context.Context, userID string, limit int, _ string) ([]dto.UserActivityDTO, error) {
	s.lastLimit = limit
	return []dto.UserActivityDTO{{UserID: userID, ActivityType: model.ActivityTypeAssessment}}, nil
}

type stubJournalService struct {
	journal   *dto.JournalDTO
	err       error
	lastToken string
}

func (s *stubJournalService) Analyze(_ context.Context, _ string) (datatypes.JSONMap, service.StepResult, error) {
	return service.UnavailableAnalysis(), service.OK(), nil
}

func (s *stubJournalService) Create(_ context.Context, req dto.JournalCreateDTO, token string) (*dto.JournalDTO, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return &dto.JournalDTO{ID: "j-1", UserID: req.UserID, Content: req.Content}, nil
}

func (s *stubJournalService) Latest(_ context.Context, _ string, _ string) (*dto.JournalDTO, error) {
	return s.journal, s.err
}

type testServices struct {
	assessments *stubAssessmentService
	submissions *stubSubmissionService
	activities  *stubActivityService
	journals    *stubJournalService
}

func setupTestRouter() (*gin.Engine, *testServices) {
	svcs := &testServices{
		assessments: &stubAssessmentService{},
		submissions: &stubSubmissionService{},
		activities:  &stubActivityService{},
		journals:    &stubJournalService{},
	}
	router := gin.New()
	router.Use(middleware.BearerToken())
	api := router.Group("/api")
	NewAssessmentController(svcs.assessments, svcs.submissions, svcs.activities).RegisterRoutes(api)
	NewJournalController(svcs.journals).RegisterRoutes(api)
	return router, svcs
}

func doJSON(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitAssessment_Success(t *testing.T) {
	router, svcs := setupTestRouter()
	svcs.submissions.result = &service.SubmissionResult{
		Assessment: dto.UserAssessmentDTO{ID: "ua-1", UserID: "u1", AssessmentID: "a1", TotalScore: 22, RiskLevel: service.RiskSevere},
		Enrichment: service.OK(),
		Activity:   service.OK(),
	}

	body := map[string]any{
		"user_id":       "u1",
		"assessment_id": "a1",
		"responses":     []map[string]any{{"question_id": "q1", "value": 3}, {"question_id": "q2", "value": "2"}},
	}
	w := doJSON(router, http.MethodPost, "/api/assessments/submit", body, map[string]string{"Authorization": "Bearer abc.def.ghi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SubmitAssessmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ua-1", resp.Result.ID)
	assert.Equal(t, service.RiskSevere, resp.Result.RiskLevel)

	assert.Equal(t, "abc.def.ghi", svcs.submissions.lastToken)
	require.Len(t, svcs.submissions.lastReq.Responses, 2)
	assert.Equal(t, "q2", svcs.submissions.lastReq.Responses[1].QuestionID)
}

func TestSubmitAssessment_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &service.ValidationError{Field: "responses", Message: "must not be empty"}, http.StatusBadRequest},
		{"dependency", &service.DependencyError{Op: "persist user assessment", Err: errors.New("connection reset")}, http.StatusInternalServerError},
		{"not found", service.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svcs := setupTestRouter()
			svcs.submissions.err = tt.err

			w := doJSON(router, http.MethodPost, "/api/assessments/submit", map[string]any{"user_id": "u1"}, nil)
			assert.Equal(t, tt.code, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Empty(t, svcs.submissions.lastToken)
		})
	}
}

func TestSubmitAssessment_MalformedBody(t *testing.T) {
	router, _ := setupTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/submit", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAssessments(t *testing.T) {
	router, svcs := setupTestRouter()
	svcs.assessments.list = []dto.AssessmentSummaryDTO{{ID: "a1", Code: "PHQ-9", QuestionCount: 9}}

	w := doJSON(router, http.MethodGet, "/api/assessments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []dto.AssessmentSummaryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].QuestionCount)
}

func TestGetAssessment_NotFound(t *testing.T) {
	router, svcs := setupTestRouter()
	svcs.assessments.err = service.ErrNotFound

	w := doJSON(router, http.MethodGet, "/api/assessments/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUserAssessments(t *testing.T) {
	router, svcs := setupTestRouter()

	w := doJSON(router, http.MethodGet, "/api/users/u1/assessments?assessment_id=a1&limit=5", nil, map[string]string{"Authorization": "bearer tok"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svcs.submissions.lastLimit)
	assert.Equal(t, "a1", svcs.submissions.lastQuery)
	assert.Equal(t, "tok", svcs.submissions.lastToken)

	w = doJSON(router, http.MethodGet, "/api/users/u1/assessments?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users/u1/assessments?limit=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserAssessment(t *testing.T) {
	router, _ := setupTestRouter()

	w := doJSON(router, http.MethodGet, "/api/user-assessments/ua-9", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail dto.UserAssessmentDetailDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "ua-9", detail.ID)
	assert.Equal(t, service.RiskLow, detail.RiskLevel)
}

func TestListUserActivities_DefaultLimit(t *testing.T) {
	router, svcs := setupTestRouter()

	w := doJSON(router, http.MethodGet, "/api/users/u1/activities", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svcs.activities.lastLimit)
	assert.Contains(t, w.Body.String(), model.ActivityTypeAssessment)
}

func TestCreateJournal(t *testing.T) {
	router, svcs := setupTestRouter()

	w := doJSON(router, http.MethodPost, "/api/journals", map[string]string{"user_id": "u1", "content": "Slept well"}, map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok", svcs.journals.lastToken)

	w = doJSON(router, http.MethodPost, "/api/journals", map[string]string{"user_id": "u1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestJournal_NotFound(t *testing.T) {
	router, svcs := setupTestRouter()
	svcs.journals.err = service.ErrNotFound

	w := doJSON(router, http.MethodGet, "/api/journals/latest", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
