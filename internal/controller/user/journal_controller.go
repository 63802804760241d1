package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/internal/controller"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/middleware"
	"github.com/lshigami/wellrelay/internal/service"
)

type JournalController struct {
	journalService service.JournalService
}

func NewJournalController(js service.JournalService) *JournalController {
	return &JournalController{journalService: js}
}

func (c *JournalController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/journals", c.CreateJournal)
	api.GET("/journals/latest", c.LatestJournal)
}

// CreateJournal godoc
// @Summary Save a journal entry
// @Description Analyzes the entry with the LLM (best-effort) and stores it with the analysis.
// @Tags Journals
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token forwarded to the data store"
// @Param journal body dto.JournalCreateDTO true "Journal entry"
// @Success 201 {object} dto.JournalDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Data store failure"
// @Router /api/journals [post]
func (c *JournalController) CreateJournal(ctx *gin.Context) {
	var req dto.JournalCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	journal, err := c.journalService.Create(ctx.Request.Context(), req, middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, journal)
}

// LatestJournal godoc
// @Summary Latest journal entry
// @Tags Journals
// @Produce json
// @Param user_id query string false "Restrict to this user"
// @Success 200 {object} dto.JournalDTO
// @Failure 404 {object} dto.ErrorResponse "No journal entries"
// @Router /api/journals/latest [get]
func (c *JournalController) LatestJournal(ctx *gin.Context) {
	journal, err := c.journalService.Latest(ctx.Request.Context(), ctx.Query("user_id"), middleware.AuthToken(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, journal)
}
