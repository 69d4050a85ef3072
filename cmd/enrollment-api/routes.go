package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-enrollment-api/api/swagger"
	"github.com/noah-isme/class-enrollment-api/internal/middleware"
	"github.com/noah-isme/class-enrollment-api/internal/models"
	"github.com/noah-isme/class-enrollment-api/pkg/config"
	"github.com/noah-isme/class-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-enrollment-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", a.observer.Health)
	r.GET("/ready", a.observer.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", a.observer.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(a.tokens))

	api.GET("/shifts", a.shifts.List)
	api.GET("/shifts/:shiftId", a.shifts.Get)
	api.POST("/shifts", middleware.RequireRoles(models.RoleAdmin), a.shifts.Create)

	api.GET("/classes", a.classes.List)

	students := api.Group("/students/:id", middleware.RBAC(string(models.RoleAdmin), middleware.Self))
	students.GET("/enrollments", a.planner.Enrollments)
	students.GET("/plan", a.planner.GetPlan)
	students.DELETE("/plan", a.planner.Clear)
	students.POST("/plan/check", a.planner.Check)
	students.POST("/plan/classes", a.planner.Stage)
	students.DELETE("/plan/classes/:classId", a.planner.Unstage)
	students.POST("/plan/submit", a.planner.Submit)
	students.GET("/timetable", a.planner.Timetable)

	return r
}
