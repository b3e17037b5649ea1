package perfstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps model stats in a single JSON file, keyed by model ID.
// All access goes through a mutex; writes rewrite the file atomically via a
// temp file rename, so a crash mid-write never corrupts the history.
type FileStore struct {
	path string

	mu    sync.Mutex
	stats map[string]*ModelStats
}

// OpenFileStore loads (or initializes) the stats file at path. A missing
// file is not an error: the store starts empty and the file is created on
// the first Update.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		stats: make(map[string]*ModelStats),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading performance store: %w", err)
	}

	if err := json.Unmarshal(data, &s.stats); err != nil {
		return nil, fmt.Errorf("parsing performance store %s: %w", path, err)
	}
	return s, nil
}

// StatsFor returns a copy of the model's stats, or ok=false on a miss.
func (s *FileStore) StatsFor(modelID string) (*ModelStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[modelID]
	if !ok {
		return nil, false
	}
	cp := *stats
	if stats.AvgQualityScore != nil {
		v := *stats.AvgQualityScore
		cp.AvgQualityScore = &v
	}
	cp.QualityHistory = append([]float64(nil), stats.QualityHistory...)
	return &cp, true
}

// All returns a copy of every stats record, keyed by model ID.
func (s *FileStore) All() map[string]*ModelStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*ModelStats, len(s.stats))
	for id, stats := range s.stats {
		cp := *stats
		if stats.AvgQualityScore != nil {
			v := *stats.AvgQualityScore
			cp.AvgQualityScore = &v
		}
		cp.QualityHistory = append([]float64(nil), stats.QualityHistory...)
		out[id] = &cp
	}
	return out
}

// Update inserts or replaces a model's stats and persists the whole file.
func (s *FileStore) Update(stats *ModelStats) error {
	if stats == nil || stats.ModelID == "" {
		return fmt.Errorf("stats record requires a model ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *stats
	s.stats[cp.ModelID] = &cp
	return s.flushLocked()
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) flushLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating performance store directory: %w", err)
	}

	data, err := json.MarshalIndent(s.stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling performance store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".perfstore-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpPath)
		return fmt.Errorf("writing performance store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing performance store: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing performance store: %w", err)
	}
	return nil
}
