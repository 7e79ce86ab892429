package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/domain"
	"github.com/samber/oops"
)

const countersFile = "counters.json"

// FileStorage implements stats.Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based counters repository
func NewFileStorage(basePath string) (Repository, error) {
	statsPath := filepath.Join(basePath, "stats")
	if err := os.MkdirAll(statsPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create stats directory").Wrap(err)
	}

	return &FileStorage{basePath: statsPath}, nil
}

func (s *FileStorage) Load() (*domain.Counters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, countersFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.Counters{}, nil
		}
		return nil, oops.With("path", path, "context", "failed to read counters").Wrap(err)
	}

	var counters domain.Counters
	if err := json.Unmarshal(data, &counters); err != nil {
		return nil, oops.With("path", path, "context", "failed to unmarshal counters").Wrap(err)
	}

	return &counters, nil
}

// Save replaces the counters file atomically so a crash never leaves a torn file.
func (s *FileStorage) Save(counters *domain.Counters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return oops.With("context", "failed to marshal counters").Wrap(err)
	}

	tmp, err := os.CreateTemp(s.basePath, countersFile+".tmp.*")
	if err != nil {
		return oops.With("directory", s.basePath, "context", "failed to create temp file").Wrap(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oops.With("path", tmpPath, "context", "failed to write counters").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmpPath, "context", "failed to close counters").Wrap(err)
	}

	path := filepath.Join(s.basePath, countersFile)
	if err := os.Rename(tmpPath, path); err != nil {
		return oops.With("path", path, "context", "failed to replace counters").Wrap(err)
	}
	return nil
}
