package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/internal/controller"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/middleware"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
	submissionService service.AssessmentSubmissionService
	activityService   service.ActivityService
}

func NewAssessmentController(as service.AssessmentService, ss service.AssessmentSubmissionService, acts service.ActivityService) *AssessmentController {
	return &AssessmentController{
		assessmentService: as,
		submissionService: ss,
		activityService:   acts,
	}
}

func (c *AssessmentController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/assessments", c.ListAssessments)
	api.GET("/assessments/:assessment_id", c.GetAssessment)
	api.POST("/assessments/submit", c.SubmitAssessment)
	api.GET("/users/:user_id/assessments", c.ListUserAssessments)
	api.GET("/users/:user_id/activities", c.ListUserActivities)
	api.GET("/user-assessments/:id", c.GetUserAssessment)
}

// ListAssessments godoc
// @Summary List available assessments
// @Description Get every screening instrument with its question count.
// @Tags Assessments
// @Produce json
// @Success 200 {array} dto.AssessmentSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	assessments, err := c.assessmentService.ListAssessments(ctx.Request.Context(), middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assessments)
}

// GetAssessment godoc
// @Summary Get an assessment with its questions
// @Tags Assessments
// @Produce json
// @Param assessment_id path string true "Assessment ID"
// @Success 200 {object} dto.AssessmentDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/assessments/{assessment_id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	assessment, err := c.assessmentService.GetAssessment(ctx.Request.Context(), ctx.Param("assessment_id"), middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// SubmitAssessment godoc
// @Summary Submit assessment responses
// @Description Scores the responses, classifies risk, requests an AI summary and stores the result.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token forwarded to the data store"
// @Param submission body dto.AssessmentSubmitDTO true "User, assessment and responses"
// @Success 200 {object} dto.SubmitAssessmentResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid fields"
// @Failure 500 {object} dto.ErrorResponse "Data store failure"
// @Router /api/assessments/submit [post]
func (c *AssessmentController) SubmitAssessment(ctx *gin.Context) {
	var req dto.AssessmentSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitAssessment: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	token := middleware.AuthToken(ctx)
	log.Info().
		Str("user_id", req.UserID).
		Str("assessment_id", req.AssessmentID).
		Int("response_count", len(req.Responses)).
		Bool("token_present", token != "").
		Msg("Received assessment submission")

	result, err := c.submissionService.SubmitAssessment(ctx.Request.Context(), req, token)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SubmitAssessmentResponse{Success: true, Result: result.Assessment})
}

// ListUserAssessments godoc
// @Summary List a user's submissions
// @Description Newest first. Optionally filtered by assessment and limited.
// @Tags Assessments
// @Produce json
// @Param user_id path string true "User ID"
// @Param assessment_id query string false "Only submissions of this assessment"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} dto.UserAssessmentDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/users/{user_id}/assessments [get]
func (c *AssessmentController) ListUserAssessments(ctx *gin.Context) {
	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}
	results, err := c.submissionService.ListUserAssessments(ctx.Request.Context(), ctx.Param("user_id"), ctx.Query("assessment_id"), limit, middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, results)
}

// GetUserAssessment godoc
// @Summary Get one submission with its responses
// @Tags Assessments
// @Produce json
// @Param id path string true "User assessment ID"
// @Success 200 {object} dto.UserAssessmentDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/user-assessments/{id} [get]
func (c *AssessmentController) GetUserAssessment(ctx *gin.Context) {
	detail, err := c.submissionService.GetUserAssessment(ctx.Request.Context(), ctx.Param("id"), middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// ListUserActivities godoc
// @Summary Recent activity for a user
// @Tags Activities
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Maximum number of rows (default 20)"
// @Success 200 {array} dto.UserActivityDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/users/{user_id}/activities [get]
func (c *AssessmentController) ListUserActivities(ctx *gin.Context) {
	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}
	activities, err := c.activityService.ListRecent(ctx.Request.Context(), ctx.Param("user_id"), limit, middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, activities)
}

func parseLimit(ctx *gin.Context) (int, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		return 0, false
	}
	return limit, true
}
