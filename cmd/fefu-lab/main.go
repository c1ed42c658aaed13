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
	"go.uber.org/zap"

	_ "github.com/noah-isme/fefu-lab-api/api/swagger"
	"github.com/noah-isme/fefu-lab-api/internal/handler"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/repository"
	"github.com/noah-isme/fefu-lab-api/internal/router"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/cache"
	"github.com/noah-isme/fefu-lab-api/pkg/config"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	"github.com/noah-isme/fefu-lab-api/pkg/jobs"
	"github.com/noah-isme/fefu-lab-api/pkg/logger"
	"github.com/noah-isme/fefu-lab-api/pkg/storage"
)

const sessionPurgeInterval = time.Hour

// @title FEFU Lab API
// @version 1.0.0
// @description Students, instructors, courses and enrollments of the FEFU laboratory portal.
// @BasePath /
// @schemes http https

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction && !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "fefu-lab", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	mediaStore, err := storage.NewLocalStorage(cfg.Media.Dir)
	if err != nil {
		return fmt.Errorf("init media storage: %w", err)
	}
	mediaSvc := service.NewMediaService(mediaStore, storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL), logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:    studentRepo,
		Instructors: instructorRepo,
		Courses:     courseRepo,
		Enrollments: enrollmentRepo,
		Cache:       cacheSvc,
		Logger:      logr,
		Config:      service.DashboardServiceConfig{CacheTTL: cfg.Cache.TTL},
	})

	registrationRoles := parseRoles(cfg.Registration.AllowedRoles)
	authSvc := service.NewAuthService(userRepo, studentRepo, metricsSvc, logr, service.AuthConfig{
		SessionSecret:     cfg.Session.Secret,
		SessionLifetime:   cfg.Session.Lifetime,
		Issuer:            cfg.Session.Issuer,
		RegistrationRoles: registrationRoles,
	})
	profileSvc := service.NewProfileService(userRepo, studentRepo, mediaSvc, cfg.Media.AvatarMaxBytes, logr)
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, mediaSvc, dashboardSvc, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, dashboardSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, instructorRepo, enrollmentRepo, dashboardSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceParams{
		Repo:      enrollmentRepo,
		Courses:   courseRepo,
		Students:  studentRepo,
		Audit:     userRepo,
		Dashboard: dashboardSvc,
		Metrics:   metricsSvc,
		Logger:    logr,
	})
	exportSvc := service.NewExportService(courseRepo, enrollmentRepo, nil, nil, logr)

	feedbackQueue := jobs.NewQueue("feedback", service.DeliverFeedback(logr, metricsSvc), jobs.QueueConfig{
		Workers:    cfg.Feedback.Workers,
		MaxRetries: cfg.Feedback.Retries,
		Logger:     logr,
	})
	feedbackQueue.Start(context.Background())
	feedbackSvc := service.NewFeedbackService(feedbackQueue, metricsSvc, logr)

	go purgeSessions(ctx, authSvc, logr)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	engine := router.New(router.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:     cfg.Session.CookieName,
			Secure:   cfg.Session.Secure,
			Lifetime: cfg.Session.Lifetime,
		}, registrationRoles),
		Home:        handler.NewHomeHandler(dashboardSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc, enrollmentSvc),
		Feedback:    handler.NewFeedbackHandler(feedbackSvc),
		Profile:     handler.NewProfileHandler(profileSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc, exportSvc),
		Instructors: handler.NewInstructorHandler(instructorSvc),
		Media:       handler.NewMediaHandler(mediaSvc),
		Ops:         handler.NewMetricsHandler(metricsSvc, checks, logr),
	}, router.Options{
		Logger:         logr,
		Metrics:        metricsSvc,
		Sessions:       authSvc,
		Audit:          userRepo,
		CookieName:     cfg.Session.CookieName,
		AllowedHosts:   cfg.AllowedHosts,
		TrustedOrigins: cfg.CSRFTrustedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		feedbackQueue.Stop()
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("grace_period", cfg.ShutdownGracePeriod))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	feedbackQueue.Stop()
	logr.Info("server stopped")
	return nil
}

func parseRoles(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	for _, value := range raw {
		role := models.Role(value)
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles
}

func purgeSessions(ctx context.Context, auth *service.AuthService, logr *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				logr.Warn("session purge failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logr.Info("expired sessions purged", zap.Int64("count", removed))
			}
		}
	}
}

