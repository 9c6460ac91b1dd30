package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trendwatch/internal/models"
)

// ExtractionCache persists topic assignments keyed by
// (videoID, model, promptVersion) so repeat runs do not re-pay for the most
// expensive step. Entries expire after maxAge.
type ExtractionCache struct {
	filePath string
	entries  map[string]cacheEntry
	mu       sync.RWMutex
	maxAge   time.Duration
}

type cacheEntry struct {
	Assignment *models.TopicAssignment `json:"assignment"`
	StoredAt   time.Time               `json:"stored_at"`
}

type cacheRecord struct {
	Key        string                  `json:"key"`
	Assignment *models.TopicAssignment `json:"assignment"`
	StoredAt   time.Time               `json:"stored_at"`
}

// NewExtractionCache loads (or creates) the cache file under dataDir.
func NewExtractionCache(dataDir string, maxAge time.Duration) (*ExtractionCache, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cache := &ExtractionCache{
		filePath: filepath.Join(dataDir, "extraction_cache.json"),
		entries:  make(map[string]cacheEntry),
		maxAge:   maxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load extraction cache: %w", err)
	}
	cache.cleanup()

	return cache, nil
}

// Get returns a cached assignment if present and not expired.
func (c *ExtractionCache) Get(key string) (*models.TopicAssignment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.StoredAt) >= c.maxAge {
		return nil, false
	}
	return entry.Assignment, true
}

// Put stores an assignment and flushes the cache file.
func (c *ExtractionCache) Put(key string, assignment *models.TopicAssignment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{Assignment: assignment, StoredAt: time.Now()}
	return c.save()
}

// Len returns the number of cached entries.
func (c *ExtractionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ExtractionCache) cleanup() {
	cutoff := time.Now().Add(-c.maxAge)
	for key, entry := range c.entries {
		if entry.StoredAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}

func (c *ExtractionCache) load() error {
	file, err := os.Open(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No cache yet, start empty
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var records []cacheRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return fmt.Errorf("failed to decode cache data: %w", err)
	}

	for _, r := range records {
		c.entries[r.Key] = cacheEntry{Assignment: r.Assignment, StoredAt: r.StoredAt}
	}
	return nil
}

func (c *ExtractionCache) save() error {
	records := make([]cacheRecord, 0, len(c.entries))
	for key, entry := range c.entries {
		records = append(records, cacheRecord{
			Key:        key,
			Assignment: entry.Assignment,
			StoredAt:   entry.StoredAt,
		})
	}

	file, err := os.Create(c.filePath)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
