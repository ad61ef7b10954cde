package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/ventylab/backend/docs"
	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/cache"
	"github.com/ventylab/backend/internal/config"
	"github.com/ventylab/backend/internal/handlers"
	"github.com/ventylab/backend/internal/lessonstore"
	"github.com/ventylab/backend/internal/logger"
	"github.com/ventylab/backend/internal/middlewares"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
	"github.com/ventylab/backend/internal/services"
	"github.com/ventylab/backend/internal/taskqueue"
)

// @title VentyLab API
// @version 1.0
// @description API for the VentyLab mechanical ventilation e-learning platform

// @contact.name API Support
// @contact.email support@ventylab.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service-to-service maintenance endpoints
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting VentyLab API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize JWT token generator
	tokenGenerator := auth.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Open the lesson content store
	contentStore, err := lessonstore.New(cfg.Content.Root, cfg.Content.CacheSize, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to open lesson content store", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	userTokenRepo := repositories.NewUserTokenRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	attemptRepo := repositories.NewQuizAttemptRepository(db)
	achievementRepo := repositories.NewAchievementRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	searchRepo := repositories.NewSearchRepository(db)

	// Task enqueuer and recommendation cache
	enqueuer := taskqueue.NewEnqueuer(asynqClient, logger.Logger)
	recCache := cache.NewRecommendationCache(rdb)

	// Initialize services
	authService := services.NewAuthService(userRepo, userTokenRepo, tokenGenerator, enqueuer, logger.Logger)
	profileService := services.NewProfileService(userRepo, userTokenRepo)
	adminUserService := services.NewAdminUserService(userRepo, userTokenRepo, enqueuer, logger.Logger)
	catalogService := services.NewCatalogService(moduleRepo, lessonRepo, progressRepo, quizRepo, contentStore, enqueuer, recCache, logger.Logger)
	quizService := services.NewQuizService(quizRepo, attemptRepo, enqueuer, logger.Logger)
	achievementService := services.NewAchievementService(achievementRepo, progressRepo, attemptRepo, sessionRepo, userRepo, enqueuer, logger.Logger)
	searchService := services.NewSearchService(searchRepo)
	recommendationService := services.NewRecommendationService(lessonRepo, moduleRepo, recCache, logger.Logger)
	progressService := services.NewProgressService(moduleRepo, lessonRepo, progressRepo, attemptRepo, achievementRepo, sessionRepo)
	sessionService := services.NewSessionService(sessionRepo, enqueuer, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWT.RefreshTokenExpiry, logger.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)
	adminUserHandler := handlers.NewAdminUserHandler(adminUserService, logger.Logger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	achievementHandler := handlers.NewAchievementHandler(achievementService, logger.Logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger.Logger)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger.Logger)
	internalHandler := handlers.NewInternalHandler(sessionService, recommendationService, logger.Logger)

	// Initialize auth middlewares
	authMiddleware := auth.Middleware(tokenGenerator)
	adminMiddleware := auth.RoleMiddleware(tokenGenerator, int(models.RoleAdmin))
	apiKeyMiddleware := auth.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		authHandler.RegisterRoutes(r)

		// Authenticated endpoints (JWT protected)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			profileHandler.RegisterRoutes(r)
			catalogHandler.RegisterRoutes(r)
			quizHandler.RegisterRoutes(r)
			achievementHandler.RegisterRoutes(r)
			searchHandler.RegisterRoutes(r)
			recommendationHandler.RegisterRoutes(r)
			progressHandler.RegisterRoutes(r)
			sessionHandler.RegisterRoutes(r)
		})

		// Admin endpoints (Role 3, JWT protected)
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminUserHandler.RegisterRoutes(r)
		})

		// Internal maintenance endpoints (API Key protected)
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			internalHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "ventylab_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
