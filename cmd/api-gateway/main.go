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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/versoindustries/verso-backend-sub001/api/swagger"
	"github.com/versoindustries/verso-backend-sub001/internal/handler"
	"github.com/versoindustries/verso-backend-sub001/internal/middleware"
	"github.com/versoindustries/verso-backend-sub001/internal/models"
	"github.com/versoindustries/verso-backend-sub001/internal/notify"
	"github.com/versoindustries/verso-backend-sub001/internal/repository"
	"github.com/versoindustries/verso-backend-sub001/internal/service"
	"github.com/versoindustries/verso-backend-sub001/internal/worker"
	"github.com/versoindustries/verso-backend-sub001/pkg/cache"
	"github.com/versoindustries/verso-backend-sub001/pkg/config"
	"github.com/versoindustries/verso-backend-sub001/pkg/database"
	"github.com/versoindustries/verso-backend-sub001/pkg/jobs"
	"github.com/versoindustries/verso-backend-sub001/pkg/logger"
	corsmiddleware "github.com/versoindustries/verso-backend-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/versoindustries/verso-backend-sub001/pkg/middleware/requestid"
)

// @title Verso Scheduling API
// @version 1.0.0
// @description Appointment scheduling and availability engine
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

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, settings cache disabled", "error", err)
	} else {
		redisClient = client
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	availRepo := repository.NewAvailabilityRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	typeRepo := repository.NewAppointmentTypeRepository(db)
	offeringRepo := repository.NewServiceOfferingRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	defaults := service.SlotDefaults{
		StepMinutes:     cfg.Scheduling.DefaultStepMinutes,
		BufferMinutes:   cfg.Scheduling.DefaultBufferMins,
		DurationMinutes: cfg.Scheduling.DefaultDurationMins,
	}

	settingsSvc := service.NewSettingsService(settingRepo, cacheRepo, cfg.Settings.CacheTTL, logr)
	availabilitySvc := service.NewAvailabilityService(availRepo, resourceRepo, validate, logr)
	allocatorSvc := service.NewAllocatorService(resourceRepo, apptRepo, logr)
	slotSvc := service.NewSlotService(availabilitySvc, apptRepo, resourceRepo, resourceRepo, typeRepo, offeringRepo, settingsSvc, allocatorSvc, defaults, logr)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	notifier := notify.NewAsyncNotifier(notify.NewLogNotifier(logr), jobs.QueueConfig{Logger: logr})
	notifier.Start(bgCtx)

	waitlistSvc := service.NewWaitlistService(waitlistRepo, typeRepo, settingsSvc, notifier, metrics, cfg.Waitlist.OfferTTL, validate, logr)
	bookingSvc := service.NewBookingService(apptRepo, resourceRepo, waitlistRepo, slotSvc, allocatorSvc, typeRepo, offeringRepo, settingsSvc, waitlistSvc, metrics, defaults, validate, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, cfg.Scheduling.DefaultTimezone, validate, logr)
	catalogSvc := service.NewCatalogService(typeRepo, offeringRepo, validate, logr)
	exportSvc := service.NewExportService(apptRepo, resourceRepo, logr)

	sweeper := worker.NewWaitlistSweeper(waitlistSvc, typeRepo, worker.WaitlistSweeperConfig{
		Interval:   cfg.Waitlist.SweepInterval,
		Workers:    cfg.Waitlist.SweepWorkers,
		BufferSize: cfg.Waitlist.SweepBufferSize,
	}, logr)
	sweeper.Start(bgCtx)

	authHandler := handler.NewAuthHandler(authSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	slotHandler := handler.NewSlotHandler(slotSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	waitlistHandler := handler.NewWaitlistHandler(waitlistSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/resources", resourceHandler.List)
		api.GET("/resources/:id", resourceHandler.Get)
		api.GET("/resources/:id/availability", availabilityHandler.Resolve)
		api.GET("/resources/:id/slots", slotHandler.ResourceSlots)

		api.GET("/appointment-types", catalogHandler.ListTypes)
		api.GET("/appointment-types/:id", catalogHandler.GetType)
		api.GET("/appointment-types/:id/slots", slotHandler.TypeSlots)
		api.GET("/services", catalogHandler.ListOfferings)
		api.GET("/slots/check", slotHandler.Check)

		api.POST("/appointments", bookingHandler.Create)
		api.GET("/appointments/:id", bookingHandler.Get)
		api.POST("/appointments/:id/recurrences", bookingHandler.Recurrences)
		api.DELETE("/appointments/:id", bookingHandler.Cancel)

		api.POST("/waitlist", waitlistHandler.Join)
		api.DELETE("/waitlist/:id", waitlistHandler.Leave)
	}

	staff := api.Group("")
	staff.Use(middleware.JWTAuth(authSvc))
	{
		staff.GET("/auth/me", authHandler.Me)
		staff.GET("/resources/:id/appointments", bookingHandler.ListDay)
		staff.GET("/resources/:id/windows", availabilityHandler.ListWindows)
		staff.GET("/resources/:id/exceptions", availabilityHandler.ListExceptions)
		staff.GET("/resources/:id/schedule/export", exportHandler.DaySchedule)
		staff.GET("/appointment-types/:id/waitlist", waitlistHandler.List)
		staff.POST("/appointment-types/:id/waitlist/process", waitlistHandler.Process)
		staff.PATCH("/appointments/:id/status", bookingHandler.UpdateStatus)
	}

	admin := api.Group("")
	admin.Use(middleware.JWTAuth(authSvc), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/resources", resourceHandler.Create)
		admin.PUT("/resources/:id", resourceHandler.Update)
		admin.DELETE("/resources/:id", resourceHandler.Delete)

		admin.POST("/resources/:id/windows", availabilityHandler.CreateWindow)
		admin.DELETE("/windows/:id", availabilityHandler.DeleteWindow)
		admin.PUT("/resources/:id/exceptions", availabilityHandler.UpsertException)
		admin.DELETE("/exceptions/:id", availabilityHandler.DeleteException)

		admin.POST("/appointment-types", catalogHandler.CreateType)
		admin.PUT("/appointment-types/:id", catalogHandler.UpdateType)
		admin.DELETE("/appointment-types/:id", catalogHandler.DeleteType)
		admin.POST("/services", catalogHandler.CreateOffering)
		admin.PUT("/services/:id", catalogHandler.UpdateOffering)
		admin.DELETE("/services/:id", catalogHandler.DeleteOffering)

		admin.GET("/settings", settingsHandler.List)
		admin.PUT("/settings/:key", settingsHandler.Set)
		admin.DELETE("/settings/:key", settingsHandler.Unset)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	bgCancel()
	sweeper.Stop()
	notifier.Stop()
	logr.Info("shutdown complete")
}
