// Command seed imports a curriculum catalog from a JSON file into the
// database. Existing modules and lessons are skipped by slug, so re-running
// against the same file is safe.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/config"
	"github.com/ventylab/backend/internal/logger"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

// catalogFile is the JSON document describing the curriculum to import
type catalogFile struct {
	Modules []catalogModule `json:"modules"`
}

type catalogModule struct {
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Position    int               `json:"position"`
	Lessons     []catalogLesson   `json:"lessons"`
}

type catalogLesson struct {
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	ShortSummary     string `json:"shortSummary"`
	Position         int    `json:"position"`
	ContentFile      string `json:"contentFile"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

func main() {
	catalogPath := flag.String("catalog", "content/catalog.json", "path to the catalog JSON file")
	flag.Parse()

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

	logger.Logger.Info("Starting catalog import", zap.String("catalog", *catalogPath))

	catalog, err := readCatalog(*catalogPath)
	if err != nil {
		logger.Logger.Fatal("Failed to read catalog", zap.Error(err))
	}

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	moduleRepo := repositories.NewModuleRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)

	ctx := context.Background()
	created, skipped := 0, 0

	for _, cm := range catalog.Modules {
		if !models.ValidDifficulty(cm.Difficulty) {
			logger.Logger.Fatal("Invalid module difficulty",
				zap.String("slug", cm.Slug),
				zap.String("difficulty", string(cm.Difficulty)),
			)
		}

		exists, err := moduleRepo.ExistsBySlug(ctx, cm.Slug)
		if err != nil {
			logger.Logger.Fatal("Failed to check module", zap.String("slug", cm.Slug), zap.Error(err))
		}

		var moduleID int
		if exists {
			module, err := moduleRepo.GetBySlug(ctx, cm.Slug)
			if err != nil {
				logger.Logger.Fatal("Failed to load module", zap.String("slug", cm.Slug), zap.Error(err))
			}
			moduleID = module.ID
			skipped++
		} else {
			module := &models.Module{
				Slug:        cm.Slug,
				Title:       cm.Title,
				Description: cm.Description,
				Difficulty:  cm.Difficulty,
				Position:    cm.Position,
			}
			if err := moduleRepo.Create(ctx, module); err != nil {
				logger.Logger.Fatal("Failed to create module", zap.String("slug", cm.Slug), zap.Error(err))
			}
			moduleID = module.ID
			created++
			logger.Logger.Info("Created module", zap.String("slug", cm.Slug))
		}

		for _, cl := range cm.Lessons {
			exists, err := lessonRepo.ExistsBySlug(ctx, cl.Slug)
			if err != nil {
				logger.Logger.Fatal("Failed to check lesson", zap.String("slug", cl.Slug), zap.Error(err))
			}
			if exists {
				skipped++
				continue
			}

			lesson := &models.Lesson{
				Slug:             cl.Slug,
				ModuleID:         moduleID,
				Title:            cl.Title,
				ShortSummary:     cl.ShortSummary,
				Position:         cl.Position,
				ContentFile:      cl.ContentFile,
				EstimatedMinutes: cl.EstimatedMinutes,
			}
			if err := lessonRepo.Create(ctx, lesson); err != nil {
				logger.Logger.Fatal("Failed to create lesson", zap.String("slug", cl.Slug), zap.Error(err))
			}
			created++
			logger.Logger.Info("Created lesson", zap.String("slug", cl.Slug))
		}
	}

	logger.Logger.Info("Catalog import finished",
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)
}

// readCatalog parses the catalog JSON file
func readCatalog(path string) (*catalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return &catalog, nil
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
