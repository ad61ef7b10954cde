// Package lessonstore loads lesson content JSON documents from disk with a
// bounded LRU cache and bounded retry on transient read failures.
package lessonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	// DefaultCacheSize bounds the number of cached lesson documents
	DefaultCacheSize = 50
	// maxAttempts is the read retry budget per load
	maxAttempts = 3
	// retryDelay is the base backoff between attempts, doubled each retry
	retryDelay = 50 * time.Millisecond
)

// ErrNotFound is returned when the content file does not exist
var ErrNotFound = errors.New("lesson content not found")

// ErrInvalidPath is returned when the file name escapes the content root
var ErrInvalidPath = errors.New("invalid lesson content path")

// entry is a cached document together with the file mtime it was read at
type entry struct {
	content json.RawMessage
	modTime time.Time
}

// Store resolves, caches and serves lesson content documents
type Store struct {
	root   string
	cache  *lru.Cache[string, entry]
	logger *zap.Logger
	sleep  func(time.Duration) // test seam
}

// New creates a store over the given content root. cacheSize <= 0 falls back
// to DefaultCacheSize.
func New(root string, cacheSize int, logger *zap.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, entry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson cache: %w", err)
	}

	return &Store{
		root:   root,
		cache:  cache,
		logger: logger,
		sleep:  time.Sleep,
	}, nil
}

// Load returns the parsed content document for the given file name. Cached
// entries are reused until the file's mtime changes. Transient read errors
// are retried up to three attempts; a missing file is permanent and maps to
// ErrNotFound.
func (s *Store) Load(name string) (json.RawMessage, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat lesson content: %w", err)
	}

	if cached, ok := s.cache.Get(name); ok {
		if cached.modTime.Equal(info.ModTime()) {
			return cached.content, nil
		}
		// Stale entry, drop it and reload from disk
		s.cache.Remove(name)
	}

	content, err := s.readWithRetry(path)
	if err != nil {
		return nil, err
	}

	if !json.Valid(content) {
		return nil, fmt.Errorf("lesson content %s is not valid JSON", name)
	}

	s.cache.Add(name, entry{content: content, modTime: info.ModTime()})
	return content, nil
}

// Invalidate drops a cached document
func (s *Store) Invalidate(name string) {
	s.cache.Remove(name)
}

// Len returns the number of cached documents
func (s *Store) Len() int {
	return s.cache.Len()
}

// resolve joins name with the content root and rejects path traversal
func (s *Store) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || filepath.IsAbs(name) {
		return "", ErrInvalidPath
	}

	path := filepath.Join(s.root, filepath.Clean(name))

	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidPath
	}

	return path, nil
}

// readWithRetry reads the file, retrying transient errors with doubling backoff
func (s *Store) readWithRetry(path string) ([]byte, error) {
	var lastErr error
	delay := retryDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := os.ReadFile(path)
		if err == nil {
			return content, nil
		}
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		lastErr = err
		s.logger.Warn("lesson content read failed",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < maxAttempts {
			s.sleep(delay)
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed to read lesson content after %d attempts: %w", maxAttempts, lastErr)
}
