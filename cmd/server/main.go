package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/config"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	"github.com/yukikurage/task-analytics-api/internal/database"
	"github.com/yukikurage/task-analytics-api/internal/handlers"
	"github.com/yukikurage/task-analytics-api/internal/lifecycle"
	"github.com/yukikurage/task-analytics-api/internal/middleware"
	"github.com/yukikurage/task-analytics-api/internal/notification"
	"github.com/yukikurage/task-analytics-api/internal/reminder"
	"github.com/yukikurage/task-analytics-api/internal/repository"
	"github.com/yukikurage/task-analytics-api/internal/services"
	"github.com/yukikurage/task-analytics-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid time zone", zap.Error(err))
	}
	sysClock := clock.System(loc)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDatabase(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}
	cancelPing()

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notesRepo := repository.NewNotificationRepository(db)
	inApp := notification.NewInApp(notesRepo)

	authService := services.NewAuthService(userRepo, cfg.AdminInviteToken)
	orgService := services.NewOrganizationService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, orgService, inApp, log.Named("tasks"))
	analyticsService := services.NewAnalyticsService(taskRepo, orgService, sysClock, cfg.PeriodDays)
	notificationService := services.NewNotificationService(notesRepo)

	var mailer notification.Mailer
	if cfg.SMTP.Enabled() {
		mailer = notification.NewSMTPMailer(cfg.SMTP, cfg.Reminder.EmailTimeout, log.Named("smtp"))
	} else {
		log.Warn("SMTP_HOST not set, reminder emails will only be logged")
		mailer = notification.NewLogMailer(log.Named("mail"))
	}

	var locker reminder.Locker = reminder.LocalLocker{}
	if cfg.Reminder.UseRedisLock {
		locker = reminder.NewRedisLocker(rdb, constants.ReminderLockKey, cfg.Reminder.LockTTL, log.Named("reminder_lock"))
	}

	scanner := reminder.NewScanner(taskRepo, inApp, mailer, locker, sysClock, log.Named("reminder"), reminder.Config{
		Interval:           cfg.Reminder.Interval,
		Schedule:           cfg.Reminder.Schedule,
		StartupDelay:       cfg.Reminder.StartupDelay,
		Window:             cfg.Reminder.Window,
		EmailTimeout:       cfg.Reminder.EmailTimeout,
		MaxConcurrentSends: cfg.Reminder.MaxConcurrentSends,
		AppBaseURL:         cfg.AppBaseURL,
	})

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                 // Redis pool size
		"tcp",              // network type
		cfg.Redis.Addr(),   // Redis address from config
		"",                 // username (empty for default user)
		cfg.Redis.Password, // password
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatal("failed to create redis session store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, scanner)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	reminderHandler := handlers.NewReminderHandler(scanner, log.Named("reminder"))
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	requireAuth := middleware.RequireAuth(authService)
	taskAccess := middleware.RequireTaskAccess(taskService, orgService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Analytics API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.POST("/:id/assign", taskAccess, taskHandler.AssignTask)
			tasks.POST("/:id/remind", taskAccess, middleware.RequireAdmin(), taskHandler.SendReminder)
		}

		stats := api.Group("/analytics")
		stats.Use(requireAuth)
		{
			stats.GET("/me", analyticsHandler.GetMyStats)
			stats.GET("/team", middleware.RequireAdmin(), analyticsHandler.GetTeamStats)
		}

		api.POST("/reminders/trigger", requireAuth, middleware.RequireAdmin(), reminderHandler.TriggerScan)

		notes := api.Group("/notifications")
		notes.Use(requireAuth)
		{
			notes.GET("", notificationHandler.ListNotifications)
			notes.PATCH("/:id/read", notificationHandler.MarkRead)
			notes.POST("/read-all", notificationHandler.MarkAllRead)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Components stop in reverse order: HTTP first, storage last.
	lc := lifecycle.New(15*time.Second, log)
	lc.Register("database", func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	lc.Register("redis", func(context.Context) error {
		return rdb.Close()
	})
	if cfg.Reminder.Enabled {
		scanner.Start()
		lc.Register("reminder scanner", func(ctx context.Context) error {
			scanner.Stop(ctx)
			return nil
		})
	} else {
		log.Info("scheduled reminders disabled")
	}
	lc.Register("http server", srv.Shutdown)

	ctx, stop := lc.WaitForSignal(context.Background())
	defer stop()

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	if err := lc.Shutdown(context.Background()); err != nil {
		log.Error("shutdown completed with errors", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
