package main

import (
	"context"
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

	_ "github.com/noah-isme/uni-hours-api/api/swagger"
	"github.com/noah-isme/uni-hours-api/internal/handler"
	"github.com/noah-isme/uni-hours-api/internal/middleware"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/repository"
	"github.com/noah-isme/uni-hours-api/internal/service"
	"github.com/noah-isme/uni-hours-api/pkg/cache"
	"github.com/noah-isme/uni-hours-api/pkg/config"
	"github.com/noah-isme/uni-hours-api/pkg/database"
	"github.com/noah-isme/uni-hours-api/pkg/logger"
	"github.com/noah-isme/uni-hours-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/uni-hours-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-hours-api/pkg/middleware/requestid"
)

// @title Gestion des Heures API
// @version 1.0.0
// @description Teaching hours declaration and approval workflow
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	declarationRepo := repository.NewDeclarationRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-hours-api",
	})

	var mail mailer.Mailer
	if cfg.Notifications.EmailEnabled && cfg.Notifications.SendgridAPIKey != "" {
		mail = mailer.NewSendgridMailer(cfg.Notifications.SendgridAPIKey, cfg.Notifications.FromName, cfg.Notifications.FromEmail, cfg.Notifications.SubjectPrefix)
	} else {
		mail = mailer.NewConsoleMailer(logr)
	}

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, mail, service.NotificationConfig{
		EmailEnabled:      cfg.Notifications.EmailEnabled,
		WorkerConcurrency: cfg.Notifications.WorkerConcurrency,
		WorkerRetries:     cfg.Notifications.WorkerRetries,
	}, logr)

	statsSvc := service.NewStatsService(declarationRepo, cacheSvc, cfg.Stats.CacheTTL, logr)

	declarationSvc := service.NewDeclarationService(declarationRepo, orgRepo, userRepo, logr,
		service.WithDeclarationNotifier(notificationSvc),
		service.WithStatsInvalidator(statsSvc),
	)

	orgSvc := service.NewOrgService(orgRepo, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	exportSvc := service.NewExportService(declarationSvc, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	authHandler := handler.NewAuthHandler(authSvc)
	declarationHandler := handler.NewDeclarationHandler(declarationSvc)
	orgHandler := handler.NewOrgHandler(orgSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	secured := api.Group("", middleware.JWT(authSvc))

	declarations := secured.Group("/declarations")
	{
		declarations.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleDepartmentHead), declarationHandler.Create)
		declarations.GET("", declarationHandler.List)
		declarations.GET("/pending", middleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleDirector), declarationHandler.Pending)
		if cfg.Export.Enabled {
			declarations.GET("/export", exportHandler.Download)
		}
		declarations.GET("/:id", declarationHandler.Get)
		declarations.PUT("/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleDepartmentHead), declarationHandler.Update)
		declarations.DELETE("/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleDepartmentHead), declarationHandler.Delete)
		declarations.POST("/:id/approve", middleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleDirector), declarationHandler.Approve)
		declarations.POST("/:id/reject", middleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleDirector), declarationHandler.Reject)
		declarations.POST("/:id/resubmit", middleware.RequireRoles(models.RoleTeacher, models.RoleDepartmentHead), declarationHandler.Resubmit)
	}

	registerOrgRoutes(secured, orgHandler, middleware.Audit(userRepo, "HIERARCHY_CHANGE", "hierarchy"))

	notifications := secured.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	secured.GET("/stats", statsHandler.Dashboard)

	admin := secured.Group("", middleware.RequireAdmin())
	{
		users := admin.Group("/users")
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", userHandler.Create)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)

		admin.GET("/admin/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerOrgRoutes(group *gin.RouterGroup, orgHandler *handler.OrgHandler, audit gin.HandlerFunc) {
	manage := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector)

	departments := group.Group("/departments")
	departments.GET("", orgHandler.ListDepartments)
	departments.GET("/:id", orgHandler.GetDepartment)
	departments.POST("", manage, audit, orgHandler.CreateDepartment)
	departments.PUT("/:id", manage, audit, orgHandler.UpdateDepartment)
	departments.DELETE("/:id", manage, audit, orgHandler.DeleteDepartment)

	tracks := group.Group("/tracks")
	tracks.GET("", orgHandler.ListTracks)
	tracks.POST("", manage, audit, orgHandler.CreateTrack)
	tracks.PUT("/:id", manage, audit, orgHandler.UpdateTrack)
	tracks.DELETE("/:id", manage, audit, orgHandler.DeleteTrack)

	levels := group.Group("/levels")
	levels.GET("", orgHandler.ListLevels)
	levels.POST("", manage, audit, orgHandler.CreateLevel)
	levels.PUT("/:id", manage, audit, orgHandler.UpdateLevel)
	levels.DELETE("/:id", manage, audit, orgHandler.DeleteLevel)

	semesters := group.Group("/semesters")
	semesters.GET("", orgHandler.ListSemesters)
	semesters.POST("", manage, audit, orgHandler.CreateSemester)
	semesters.PUT("/:id", manage, audit, orgHandler.UpdateSemester)
	semesters.DELETE("/:id", manage, audit, orgHandler.DeleteSemester)

	courseUnits := group.Group("/course-units")
	courseUnits.GET("", orgHandler.ListCourseUnits)
	courseUnits.POST("", manage, audit, orgHandler.CreateCourseUnit)
	courseUnits.PUT("/:id", manage, audit, orgHandler.UpdateCourseUnit)
	courseUnits.DELETE("/:id", manage, audit, orgHandler.DeleteCourseUnit)

	courseElements := group.Group("/course-elements")
	courseElements.GET("", orgHandler.ListCourseElements)
	courseElements.POST("", manage, audit, orgHandler.CreateCourseElement)
	courseElements.PUT("/:id", manage, audit, orgHandler.UpdateCourseElement)
	courseElements.DELETE("/:id", manage, audit, orgHandler.DeleteCourseElement)
}
