package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/database"
	_ "github.com/lshigami/wellrelay/docs"
	"github.com/lshigami/wellrelay/internal/controller"
	userctrl "github.com/lshigami/wellrelay/internal/controller/user"
	"github.com/lshigami/wellrelay/internal/middleware"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and static frontend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(cfg)
		if err := app.Start(context.Background()); err != nil {
			return err
		}

		<-app.Done()
		log.Info().Msg("Application shutting down gracefully...")

		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.Stop(stopCtx)
	},
}

func newApp(cfg *config.Config) *fx.App {
	return fx.New(appOptions(cfg))
}

func appOptions(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),

		// Core application components
		fx.Provide(
			NewDatabase,
			NewTracerProvider,
			observability.NewMetrics,
			NewGinEngine,
		),

		// Data access, acting as the caller per request
		fx.Provide(
			func(db *gorm.DB, cfg *config.Config) repository.Provider {
				return repository.NewStore(db, cfg)
			},
		),

		// Services
		fx.Provide(
			NewLLMService,
			service.NewRiskClassifier,
			service.NewEnrichmentService,
			service.NewActivityService,
			service.NewAssessmentService,
			service.NewAssessmentSubmissionService,
			service.NewChatService,
			service.NewJournalService,
		),

		// Controllers
		fx.Provide(
			controller.NewController,
			userctrl.NewAssessmentController,
			userctrl.NewJournalController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
	)
}

// NewDatabase opens the store and closes its pool when the app stops.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func NewTracerProvider(lc fx.Lifecycle, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	tp, err := observability.NewTracerProvider(cfg.Telemetry.TracingEnabled)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return observability.ShutdownTracerProvider(ctx, tp)
		},
	})
	return tp, nil
}

// NewLLMService depends on the tracer provider so the global provider is
// installed before the first span is started.
func NewLLMService(lc fx.Lifecycle, cfg *config.Config, metrics *observability.Metrics, _ *sdktrace.TracerProvider) (service.LLMService, error) {
	llm, err := service.NewLLMService(cfg, metrics)
	if err != nil {
		return nil, err
	}
	if c, ok := llm.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return c.Close()
			},
		})
	}
	return llm, nil
}

func NewGinEngine(cfg *config.Config, metrics *observability.Metrics) *gin.Engine {
	if strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(middleware.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middleware.BearerToken())

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Telemetry.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return r
}

// RegisterRoutesAndStartServer configures routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	ctrl *controller.Controller,
	assessmentCtrl *userctrl.AssessmentController,
	journalCtrl *userctrl.JournalController,
) {
	api := router.Group("/api")
	assessmentCtrl.RegisterRoutes(api)
	journalCtrl.RegisterRoutes(api)

	// /healthz, /chat, /analyze and the static fallback
	ctrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Wellness relay starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			return server.Shutdown(ctx)
		},
	})
}
