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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Weekly timetable generation, editing and publishing
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	grid, err := cfg.Timetable.Grid()
	if err != nil {
		logr.Fatal("invalid timetable grid", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Timetable.CacheEnabled)
	if err != nil {
		logr.Warn("redis unavailable, workload cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.WorkloadCacheTTL, logr, redisClient != nil)
	timetableSvc := service.NewTimetableService(
		grid,
		repository.NewTimetableRepository(db),
		repository.NewTimetableSessionRepository(db),
		repository.NewClassOfferingRepository(db),
		db,
		cacheSvc,
		metricsSvc,
		validator.New(),
		logr,
		service.TimetableServiceConfig{DraftTTL: cfg.Timetable.DraftTTL},
	)
	workloadSvc := service.NewWorkloadService(timetableSvc, cacheSvc, cfg.Timetable.WorkloadCacheTTL, logr)
	exportSvc := service.NewExportService(timetableSvc, workloadSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	healthHandler := handler.NewHealthHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": db,
		"redis":    cacheRepo,
	})
	timetableHandler := handler.NewTimetableHandler(timetableSvc, workloadSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", healthHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := []string{string(models.RoleSuperAdmin), string(models.RoleAdmin)}
	readers := append([]string{string(models.RoleTeacher)}, staff...)

	api := r.Group(cfg.APIPrefix)
	api.GET("/grid", timetableHandler.Grid)

	secured := api.Group("/timetables")
	secured.Use(internalmiddleware.JWT(tokenSvc))
	{
		read := internalmiddleware.RBAC(readers...)
		write := internalmiddleware.RBAC(staff...)

		secured.POST("/generate", write, internalmiddleware.Audit(logr, "timetable.generate"), timetableHandler.Generate)
		secured.GET("/drafts/:id", read, timetableHandler.Draft)
		secured.DELETE("/drafts/:id", write, internalmiddleware.Audit(logr, "timetable.discard"), timetableHandler.DiscardDraft)
		secured.GET("/drafts/:id/availability", read, timetableHandler.Availability)
		secured.POST("/drafts/:id/slots", write, internalmiddleware.Audit(logr, "timetable.slot.add"), timetableHandler.AddSlot)
		secured.PUT("/drafts/:id/slots", write, internalmiddleware.Audit(logr, "timetable.slot.edit"), timetableHandler.EditSlot)
		secured.DELETE("/drafts/:id/slots", write, internalmiddleware.Audit(logr, "timetable.slot.remove"), timetableHandler.RemoveSlot)
		secured.GET("/drafts/:id/workload", write, timetableHandler.Workloads)
		secured.GET("/drafts/:id/workload/:teacherId", internalmiddleware.RBAC(append(staff, internalmiddleware.SelfAccess)...), timetableHandler.TeacherWorkload)
		secured.GET("/drafts/:id/export", read, timetableHandler.Export)
		secured.POST("/save", write, internalmiddleware.Audit(logr, "timetable.save"), timetableHandler.Save)
		secured.GET("", read, timetableHandler.List)
		secured.POST("/:id/open", write, timetableHandler.Open)
		secured.POST("/:id/publish", write, internalmiddleware.Audit(logr, "timetable.publish"), timetableHandler.Publish)
		secured.DELETE("/:id", write, internalmiddleware.Audit(logr, "timetable.delete"), timetableHandler.Delete)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
