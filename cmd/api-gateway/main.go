package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ironbros/aura-api/api/swagger"
	"github.com/ironbros/aura-api/internal/handler"
	"github.com/ironbros/aura-api/internal/middleware"
	"github.com/ironbros/aura-api/internal/repository"
	"github.com/ironbros/aura-api/internal/service"
	"github.com/ironbros/aura-api/pkg/cache"
	"github.com/ironbros/aura-api/pkg/config"
	"github.com/ironbros/aura-api/pkg/database"
	"github.com/ironbros/aura-api/pkg/logger"
	corsmiddleware "github.com/ironbros/aura-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ironbros/aura-api/pkg/middleware/requestid"
)

// @title Aura API
// @version 0.1.0
// @description Mission assignments, group voting and aura rewards
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, mission cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	assignmentRepo := repository.NewAssignmentRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	secondaryRepo := repository.NewSecondaryMissionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	missionSvc := service.NewMissionService(missionRepo, cacheRepo, cfg.Missions.CacheTTL, logr).WithMetrics(metricsSvc)
	generatorSvc := service.NewGeneratorService(cfg.Generator, profileRepo, historyRepo, secondaryRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, missionRepo, secondaryRepo, generatorSvc, validate, logr).WithMetrics(metricsSvc)
	historySvc := service.NewHistoryService(historyRepo, groupRepo, logr)
	profileSvc := service.NewProfileService(profileRepo).WithMetrics(metricsSvc)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := missionSvc.Initialize(seedCtx, cfg.Missions.SeedFile); err != nil {
		logr.Sugar().Fatalw("failed to seed mission catalog", "error", err)
	}
	cancelSeed()

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	missionHandler := handler.NewMissionHandler(missionSvc, cfg.Missions.SeedFile)
	historyHandler := handler.NewHistoryHandler(historySvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		assignments := api.Group("/assignments")
		{
			assignments.POST("", assignmentHandler.Create)
			assignments.GET("/:user_id", assignmentHandler.Get)
			assignments.GET("/:user_id/missions", assignmentHandler.GetMissions)
			assignments.PUT("/missions/params", assignmentHandler.UpdateSlotParams)
			assignments.PUT("/missions/:type", assignmentHandler.ReplaceSlot)
			assignments.PUT("/:user_id/missions/votes", assignmentHandler.CastVote)
		}

		missions := api.Group("/missions")
		{
			missions.GET("", missionHandler.List)
			missions.GET("/logros", missionHandler.ListLogros)
			missions.GET("/:id", missionHandler.Get)
			missions.POST("/init-data", missionHandler.InitData)
		}

		history := api.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.POST("/events", historyHandler.Append)
			history.GET("/group/:group_id", historyHandler.GroupHistory)
			history.GET("/group/:group_id/export", historyHandler.ExportGroupHistory)
		}

		api.GET("/profiles", profileHandler.Get)
		api.PUT("/profiles/aura", profileHandler.AdjustAura)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
