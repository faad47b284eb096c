package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"reviewhub/database"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/handler"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/httpapi/service"
	"reviewhub/internal/mailer"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Connect to the database and run migrations
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis cache is optional; a nil cache disables caching
	var titleCache *cache.Cache
	if cfg.RedisURL != "" {
		titleCache, err = cache.New(cfg.RedisURL, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer titleCache.Close()
		logger.Info("cache_enabled", "ttl_seconds", cfg.CacheTTL)
	} else {
		logger.Info("cache_disabled")
	}

	// Mail delivery: real SMTP when configured, log-only otherwise
	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail, err = mailer.NewSMTP(cfg)
		if err != nil {
			log.Fatalf("Failed to create SMTP client: %v", err)
		}
	} else {
		logger.Warn("smtp_not_configured_using_log_mailer")
		mail = &mailer.LogMailer{Logger: logger}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, mail, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, genreRepo, categoryRepo, titleCache)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, titleCache)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService, authService)
	genreHandler := handler.NewGenreHandler(genreService, authService)
	titleHandler := handler.NewTitleHandler(titleService, authService)
	reviewHandler := handler.NewReviewHandler(reviewService, authService)
	commentHandler := handler.NewCommentHandler(commentService, authService)

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth", middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
		authHandler.RegisterRoutes(auth)

		users := v1.Group("/users", middleware.AuthRequired(authService))
		userHandler.RegisterRoutes(users)

		categories := v1.Group("/categories")
		categoryHandler.RegisterRoutes(categories)

		genres := v1.Group("/genres")
		genreHandler.RegisterRoutes(genres)

		titles := v1.Group("/titles")
		titleHandler.RegisterRoutes(titles)
		reviewHandler.RegisterRoutes(titles)
		commentHandler.RegisterRoutes(titles)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server_starting", "addr", addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_error", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
