// Package cache provides result caching for council runs, keyed by the
// full run identity: the query, the member roster, the chairman and the
// aggregation options. Any change to those produces a fresh run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// Cache provides caching for council results
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// KeySpec captures everything that makes a council run distinct. Member
// order matters: it determines the anonymizing labels.
type KeySpec struct {
	Query      string
	Members    []models.ModelRef
	Chairman   string
	EngineKind string
	Weighted   bool
	Confidence bool
	Structured bool
}

// CacheKey derives the cache key for one council run.
func CacheKey(spec KeySpec) (string, error) {
	h := sha256.New()

	if err := writeString(h, spec.Query); err != nil {
		return "", err
	}
	for _, m := range spec.Members {
		if err := writeString(h, m.ID); err != nil {
			return "", err
		}
	}
	if err := writeString(h, spec.Chairman); err != nil {
		return "", err
	}
	if err := writeString(h, spec.EngineKind); err != nil {
		return "", err
	}
	if err := writeBool(h, spec.Weighted); err != nil {
		return "", err
	}
	if err := writeBool(h, spec.Confidence); err != nil {
		return "", err
	}
	if err := writeBool(h, spec.Structured); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached council result if it exists
func (c *Cache) Get(key string) (*models.CouncilResult, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.cachePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		// Cache miss
		return nil, false
	}

	var result models.CouncilResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &result, true
}

// Put stores a council result in the cache
func (c *Cache) Put(key string, result *models.CouncilResult) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Ensure cache directory exists
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	path := c.cachePath(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if directory exists
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: verify this is a council cache directory before removing
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	// If directory is not empty, verify it contains only cache files
	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(entry.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Helper functions

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeBool(w io.Writer, b bool) error {
	_, err := fmt.Fprintf(w, "%t\x00", b)
	return err
}
