// Package cache implements Redis-backed caching for computed responses
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ventylab/backend/internal/models"
)

// ErrCacheMiss is returned when no cached value exists for the key
var ErrCacheMiss = errors.New("cache miss")

// recommendationTTL bounds how long a computed recommendation list is served
const recommendationTTL = 15 * time.Minute

// RecommendationCache stores per-user recommendation lists in Redis
type RecommendationCache struct {
	client *redis.Client
}

// NewRecommendationCache creates a cache over a Redis client
func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{
		client: client,
	}
}

// key builds the Redis key for a user's recommendations
func key(userID int) string {
	return fmt.Sprintf("recommendations:%d", userID)
}

// Get retrieves cached recommendations for a user
func (c *RecommendationCache) Get(ctx context.Context, userID int) ([]models.Recommendation, error) {
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached recommendations: %w", err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode cached recommendations: %w", err)
	}

	return recs, nil
}

// Set stores recommendations for a user with the standard TTL
func (c *RecommendationCache) Set(ctx context.Context, userID int, recs []models.Recommendation) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key(userID), data, recommendationTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache recommendations: %w", err)
	}

	return nil
}

// Invalidate drops the cached recommendations for a user
func (c *RecommendationCache) Invalidate(ctx context.Context, userID int) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate recommendations: %w", err)
	}

	return nil
}
