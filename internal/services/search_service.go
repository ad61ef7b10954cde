package services

import (
	"context"
	"strings"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
)

// SearchRepository is the interface that wraps catalog search queries
type SearchRepository interface {
	// Method SearchModules retrieves modules whose title or description matches the query.
	SearchModules(ctx context.Context, q string, limit int) ([]models.ModuleListItem, error)
	// Method SearchLessons retrieves lessons whose title or summary matches the query.
	SearchLessons(ctx context.Context, q string, limit int) ([]models.LessonListItem, error)
}

const searchResultLimit = 10

type searchService struct {
	searchRepo SearchRepository
}

// NewSearchService creates a new search service
func NewSearchService(searchRepo SearchRepository) *searchService {
	return &searchService{searchRepo: searchRepo}
}

// Search matches the query against module and lesson titles and summaries
func (s *searchService) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < 2 {
		return nil, apperror.BadRequest("query must be at least 2 characters")
	}

	modules, err := s.searchRepo.SearchModules(ctx, q, searchResultLimit)
	if err != nil {
		return nil, err
	}
	lessons, err := s.searchRepo.SearchLessons(ctx, q, searchResultLimit)
	if err != nil {
		return nil, err
	}

	return &models.SearchResult{Modules: modules, Lessons: lessons}, nil
}
