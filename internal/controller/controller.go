package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/middleware"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Controller struct {
	chatSvc    service.ChatService
	journalSvc service.JournalService
	limiter    *middleware.RateLimiter
	staticDir  string
	db         *gorm.DB
}

func NewController(chatSvc service.ChatService, journalSvc service.JournalService, cfg *config.Config, db *gorm.DB) *Controller {
	return &Controller{
		chatSvc:    chatSvc,
		journalSvc: journalSvc,
		limiter:    middleware.NewRateLimiter(cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst),
		staticDir:  cfg.Server.StaticDir,
		db:         db,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", ctrl.HealthHandler)

	llm := router.Group("", ctrl.limiter.Middleware())
	llm.POST("/chat", ctrl.ChatHandler)
	llm.POST("/analyze", ctrl.AnalyzeHandler)

	router.NoRoute(ctrl.StaticHandler)
}

// RespondError writes the JSON error body for a service error.
func RespondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var depErr *service.DependencyError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Error()})
	case errors.As(err, &depErr):
		log.Error().Err(err).Str("op", depErr.Op).Str("user_assessment_id", depErr.UserAssessmentID).Str("path", c.FullPath()).Msg("Request failed on a dependency")
		// Store errors can carry SQL; only the failed operation is reported.
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: depErr.Op + ": data store unavailable"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled request error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// ChatHandler godoc
// @Summary Chat with the wellness assistant
// @Description Relays one message to the LLM and returns its reply.
// @Tags LLM
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message and optional model"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} dto.ChatResponse "LLM unreachable, error in reply"
// @Router /chat [post]
func (ctrl *Controller) ChatHandler(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	reply, err := ctrl.chatSvc.Chat(c.Request.Context(), req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ChatResponse{Reply: fmt.Sprintf("Error: cannot reach LLM service (%v)", err)})
		return
	}
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply})
}

// AnalyzeHandler godoc
// @Summary Analyze journal text
// @Description Extracts likes, dislikes, important terms and panic words from a journal entry.
// @Tags LLM
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Journal content"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 503 {object} dto.ErrorResponse "LLM unavailable"
// @Router /analyze [post]
func (ctrl *Controller) AnalyzeHandler(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	analysis, step, err := ctrl.journalSvc.Analyze(c.Request.Context(), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	if step.IsDegraded() && step.Err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: service.AnalysisUnavailable, Details: []string{step.Err.Error()}})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// HealthHandler godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /healthz [get]
func (ctrl *Controller) HealthHandler(c *gin.Context) {
	if ctrl.db != nil {
		sqlDB, err := ctrl.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Warn().Err(err).Msg("Health check: database ping failed")
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// StaticHandler serves the frontend bundle. Unknown paths fall back to
// index.html so client-side routes work.
func (ctrl *Controller) StaticHandler(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) || strings.HasPrefix(reqPath, "/api/") {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		return
	}

	if ctrl.staticDir != "" {
		// path.Clean on a rooted path drops any "..".
		file := filepath.Join(ctrl.staticDir, filepath.FromSlash(path.Clean("/"+reqPath)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(ctrl.staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
	}
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
}
