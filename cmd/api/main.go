package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-adp-scoring/api/swagger"
	"github.com/noah-isme/sma-adp-scoring/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-adp-scoring/internal/middleware"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/repository"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	"github.com/noah-isme/sma-adp-scoring/internal/service"
	"github.com/noah-isme/sma-adp-scoring/pkg/cache"
	"github.com/noah-isme/sma-adp-scoring/pkg/config"
	"github.com/noah-isme/sma-adp-scoring/pkg/database"
	"github.com/noah-isme/sma-adp-scoring/pkg/jobs"
	"github.com/noah-isme/sma-adp-scoring/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-scoring/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-scoring/pkg/middleware/requestid"
)

// @title SMA ADP Scoring API
// @version 1.0.0
// @description Assessment scoring, grading and term result service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	attendance, err := scoring.ParseAttendancePolicy(cfg.TermResults.AttendancePolicy)
	if err != nil {
		logr.Fatal("invalid attendance policy", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(nil, cacheKeyPrefix, logr)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, term result cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, cacheKeyPrefix, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.TermResults.CacheTTL, logr, cfg.Redis.Enabled && cfg.TermResults.CacheEnabled)

	validate := validator.New()

	schemeRepo := repository.NewAssessmentSchemeRepository(db)
	gradingRepo := repository.NewGradingSchemeRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	schemeSvc := service.NewAssessmentSchemeService(schemeRepo, validate, logr)
	gradingSvc := service.NewGradingSchemeService(gradingRepo, validate, logr)
	scoreSvc := service.NewScoreService(scoreRepo, schemeRepo, gradingSvc, cacheSvc, metricsSvc, validate, logr)
	termResultSvc := service.NewTermResultService(scoreRepo, gradingSvc, cacheSvc, service.TermResultOptions{
		Attendance:      attendance,
		DefaultPassMark: cfg.TermResults.DefaultPassMark,
		CacheTTL:        cfg.TermResults.CacheTTL,
		Metrics:         metricsSvc,
	}, logr)

	recalcSvc := service.NewRecalculationService(scoreSvc, metricsSvc, logr)
	recalcQueue := jobs.NewQueue("scheme-recalculation", recalcSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Recalculation.WorkerConcurrency,
		MaxRetries: cfg.Recalculation.WorkerRetries,
		RetryDelay: cfg.Recalculation.RetryDelay,
		OnGiveUp:   recalcSvc.GiveUp,
		Logger:     logr,
	})
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	recalcQueue.Start(rootCtx)
	recalcSvc.SetQueue(recalcQueue)

	schemeHandler := handler.NewAssessmentSchemeHandler(schemeSvc, recalcSvc)
	gradingHandler := handler.NewGradingSchemeHandler(gradingSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	termResultHandler := handler.NewTermResultHandler(termResultSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenSvc))

	admin := internalmiddleware.RequireRoles(models.RoleAdmin)
	staff := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	schemes := api.Group("/assessment-schemes")
	{
		schemes.GET("", staff, schemeHandler.List)
		schemes.GET("/:id", staff, schemeHandler.Get)
		schemes.POST("", admin, schemeHandler.Create)
		schemes.PUT("/:id", admin, schemeHandler.Update)
		schemes.POST("/:id/finalize", admin, schemeHandler.Finalize)
		schemes.POST("/:id/recalculate", admin, schemeHandler.Recalculate)
	}
	api.GET("/recalculations/:jobId", admin, schemeHandler.RecalculationStatus)

	grading := api.Group("/grading-schemes")
	{
		grading.GET("", staff, gradingHandler.List)
		grading.GET("/:id", staff, gradingHandler.Get)
		grading.POST("", admin, gradingHandler.Create)
		grading.PUT("/:id", admin, gradingHandler.Update)
	}

	scores := api.Group("/scores")
	scores.Use(staff)
	{
		scores.POST("/preview", scoreHandler.Preview)
		scores.POST("", scoreHandler.Submit)
		scores.POST("/bulk", scoreHandler.BulkSubmit)
		scores.GET("", scoreHandler.List)
		scores.PUT("/:id/publish", scoreHandler.Publish)
	}

	api.GET("/students/:studentId/term-results/:termId",
		internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleParent, models.RoleStudent),
		internalmiddleware.RequireStudentAccess(),
		termResultHandler.Get,
	)

	api.GET("/metrics/summary", admin, metricsHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	recalcQueue.Stop()
}

const cacheKeyPrefix = "scoring:"
