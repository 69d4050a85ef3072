package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/class-enrollment-api/internal/handler"
	"github.com/noah-isme/class-enrollment-api/internal/repository"
	"github.com/noah-isme/class-enrollment-api/internal/scheduling"
	"github.com/noah-isme/class-enrollment-api/internal/service"
	"github.com/noah-isme/class-enrollment-api/pkg/cache"
	"github.com/noah-isme/class-enrollment-api/pkg/config"
	"github.com/noah-isme/class-enrollment-api/pkg/database"
	"github.com/noah-isme/class-enrollment-api/pkg/logger"
)

// @title Class Enrollment API
// @version 1.0.0
// @description Enrollment staging, schedule conflict checks and weekly timetables
// @BasePath /
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-memory plan store", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	app := buildApp(cfg, db, redisClient, logr)
	router := newRouter(cfg, app, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type app struct {
	metrics  *service.MetricsService
	tokens   *service.TokenService
	shifts   *handler.ShiftHandler
	classes  *handler.ClassHandler
	planner  *handler.PlannerHandler
	observer *handler.MetricsHandler
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	shiftRepo := repository.NewShiftRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	var plans service.PlanStore = service.NewMemoryPlanStore()
	if redisClient != nil {
		plans = repository.NewPlanRepository(redisClient)
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Shifts.CacheTTL, logr, redisClient != nil)
	classifier := scheduling.NewClassifier(cfg.Shifts.MorningKeywords, cfg.Shifts.AfternoonKeywords, cfg.Shifts.FullKeywords)
	shiftSvc := service.NewShiftService(shiftRepo, cacheSvc, classifier, validate, logr)
	classSvc := service.NewClassService(classRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, classSvc, cfg.Enrollment.SubmitTimeout, logr)
	plannerSvc := service.NewPlannerService(studentRepo, shiftSvc, classSvc, enrollmentSvc, plans, metrics, validate, logr, service.PlannerConfig{
		PlanTTL:             cfg.Enrollment.PlanTTL,
		RejectEmptySchedule: cfg.Enrollment.RejectEmptySchedule,
		MaxStagedClasses:    cfg.Enrollment.MaxStagedClasses,
		TimetableTitle:      cfg.Enrollment.TimetableTitlePrefix,
	})

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	return &app{
		metrics:  metrics,
		tokens:   service.NewTokenService(cfg.JWT),
		shifts:   handler.NewShiftHandler(shiftSvc),
		classes:  handler.NewClassHandler(classSvc),
		planner:  handler.NewPlannerHandler(plannerSvc),
		observer: handler.NewMetricsHandler(metrics, checks),
	}
}
