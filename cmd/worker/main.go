package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/config"
	"github.com/ventylab/backend/internal/logger"
	"github.com/ventylab/backend/internal/repositories"
	"github.com/ventylab/backend/internal/services"
	"github.com/ventylab/backend/internal/taskqueue"
)

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

	logger.Logger.Info("Starting VentyLab Worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Create Asynq client for the unlock emails re-enqueued during evaluation
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	attemptRepo := repositories.NewQuizAttemptRepository(db)
	achievementRepo := repositories.NewAchievementRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	// Initialize achievement evaluation service
	enqueuer := taskqueue.NewEnqueuer(asynqClient, logger.Logger)
	achievementService := services.NewAchievementService(
		achievementRepo,
		progressRepo,
		attemptRepo,
		sessionRepo,
		userRepo,
		enqueuer,
		logger.Logger,
	)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				taskqueue.QueueEvents: 5,
				taskqueue.QueueEmail:  1,
			},
		},
	)

	// Create worker instance
	worker := NewWorker(
		logger.Logger,
		achievementService,
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(taskqueue.TypeAchievementEvaluate, worker.HandleAchievementEvaluate)
	mux.HandleFunc(taskqueue.TypeEmailSend, worker.HandleEmailSend)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
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
