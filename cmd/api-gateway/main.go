package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/elevateforhumanity/workforce-api/api/swagger"
	"github.com/elevateforhumanity/workforce-api/internal/handler"
	"github.com/elevateforhumanity/workforce-api/internal/middleware"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/repository"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	"github.com/elevateforhumanity/workforce-api/pkg/cache"
	"github.com/elevateforhumanity/workforce-api/pkg/config"
	"github.com/elevateforhumanity/workforce-api/pkg/database"
	"github.com/elevateforhumanity/workforce-api/pkg/jobs"
	"github.com/elevateforhumanity/workforce-api/pkg/logger"
	corsmiddleware "github.com/elevateforhumanity/workforce-api/pkg/middleware/cors"
	reqidmiddleware "github.com/elevateforhumanity/workforce-api/pkg/middleware/requestid"
	"github.com/elevateforhumanity/workforce-api/pkg/storage"
)

// @title Workforce Enrollment API
// @version 1.0.0
// @description Enrollment lifecycle, funding pathways and partner compliance
// @BasePath /api/v1
// @schemes http https
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	intakeRepo := repository.NewIntakeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	fundingRepo := repository.NewFundingRepository(db)
	sourceRepo := repository.NewSourceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Resolver.CacheTTL, logr,
		cfg.Resolver.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})

	notifications := jobs.NewQueue("partner-notifications", func(ctx context.Context, job jobs.Job) error {
		logr.Sugar().Infow("partner notification dispatched", "type", job.Type, "payload", job.Payload)
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	notifications.Start(context.Background())
	defer notifications.Stop()

	activationSvc := service.NewActivationService(partnerRepo, documentRepo, metricsSvc, logr)
	activationSvc.OnStatusChange(func(partnerID string, from, to models.PartnerStatus) {
		_ = notifications.Enqueue(jobs.Job{
			Type: "partner.status_changed",
			Payload: map[string]string{
				"partner_id": partnerID,
				"from":       string(from),
				"to":         string(to),
			},
		})
	})

	documentSvc := service.NewDocumentService(documentRepo, partnerRepo, fileStore, activationSvc,
		signer, cfg.Documents, metricsSvc, logr)
	eligibilitySvc := service.NewEligibilityService(intakeRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, fundingRepo, intakeRepo, eligibilitySvc,
		cacheSvc, cfg.Enrollment, metricsSvc, logr)
	resolverSvc := service.NewResolverService(sourceRepo, cacheSvc, cfg.Resolver, logr)
	partnerSvc := service.NewPartnerService(partnerRepo, documentSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, resolverSvc)
	fundingHandler := handler.NewFundingHandler(eligibilitySvc, enrollmentSvc)
	partnerHandler := handler.NewPartnerHandler(partnerSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		session := auth.Group("", middleware.JWT(authSvc))
		session.POST("/logout", authHandler.Logout)
		session.POST("/change-password", authHandler.ChangePassword)
		session.GET("/me", authHandler.Me)
	}

	// The signed token carries its own authorization.
	api.GET("/documents/download", documentHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))

	enrollments := authed.Group("/enrollments")
	{
		enrollments.POST("",
			middleware.Audit(userRepo, models.AuditActionEnrollmentCreate, "enrollments"),
			enrollmentHandler.Create)
		enrollments.GET("", enrollmentHandler.List)
		enrollments.GET("/active", enrollmentHandler.Active)
		enrollments.GET("/:id/credential-eligibility", enrollmentHandler.CredentialEligibility)
		enrollments.GET("/:id/access", enrollmentHandler.Access)
	}

	authed.POST("/intakes/:id/pathway",
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		middleware.Audit(userRepo, models.AuditActionPathwayAssign, "intake_records"),
		fundingHandler.AssignPathway)

	authed.POST("/sponsorships/:id/separation",
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		middleware.Audit(userRepo, models.AuditActionSponsorshipEnd, "employer_sponsorships"),
		fundingHandler.Separation)

	partners := authed.Group("/partners")
	{
		staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
		ledger := middleware.RequireRoles(models.RolePartner, models.RoleAdmin, models.RoleSuperAdmin)
		partners.POST("", staff,
			middleware.Audit(userRepo, models.AuditActionPartnerRegister, "partners"),
			partnerHandler.Register)
		partners.GET("", staff, partnerHandler.List)
		partners.GET("/:id", partnerHandler.Get)
		partners.GET("/:id/compliance-report", staff, partnerHandler.ComplianceReport)

		partners.POST("/:id/documents", ledger,
			middleware.Audit(userRepo, models.AuditActionDocumentUpload, "partner_documents"),
			documentHandler.Upload)
		partners.GET("/:id/documents/status", ledger, documentHandler.Status)
		partners.GET("/:id/documents/:docId/download-url", ledger, documentHandler.DownloadURL)
		partners.POST("/:id/documents/:docId/review", staff,
			middleware.Audit(userRepo, models.AuditActionDocumentReview, "partner_documents"),
			documentHandler.Review)
		partners.DELETE("/:id/documents/:docId", staff,
			middleware.Audit(userRepo, models.AuditActionDocumentDelete, "partner_documents"),
			documentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
