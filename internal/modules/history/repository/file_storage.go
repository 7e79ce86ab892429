package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/history/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements history.Repository using file system.
// File names start with the zero-padded relay time so a directory listing is chronological.
type FileStorage struct {
	basePath string
	keep     int
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based history repository keeping at most
// keep entries on disk. keep <= 0 keeps everything.
func NewFileStorage(basePath string, keep int) (Repository, error) {
	historyPath := filepath.Join(basePath, "history")
	if err := os.MkdirAll(historyPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create history directory").Wrap(err)
	}

	return &FileStorage{basePath: historyPath, keep: keep}, nil
}

func (s *FileStorage) Save(entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%020d-%s.json", entry.RelayedAt.UnixNano(), sanitize(entry.PostID))
	path := filepath.Join(s.basePath, name)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return oops.With("post_id", entry.PostID, "context", "failed to marshal history entry").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("path", path, "context", "failed to write history entry").Wrap(err)
	}

	s.prune()
	return nil
}

// prune removes the oldest entries beyond keep. Callers hold the write lock.
func (s *FileStorage) prune() {
	if s.keep <= 0 {
		return
	}

	files, err := s.entryFiles()
	if err != nil {
		slog.Warn("Failed to list history for pruning", "history_dir", s.basePath, "error", err)
		return
	}

	for _, file := range files[:max(len(files)-s.keep, 0)] {
		path := filepath.Join(s.basePath, file.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to prune history entry", "path", path, "error", err)
		}
	}
}

// entryFiles returns the entry files oldest first.
func (s *FileStorage) entryFiles() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	return lo.Filter(entries, func(entry os.DirEntry, _ int) bool {
		return !entry.IsDir() && filepath.Ext(entry.Name()) == ".json"
	}), nil
}

func (s *FileStorage) List(limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		return []*domain.Entry{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFiles()
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Entry{}, nil
		}
		return nil, oops.With("history_dir", s.basePath, "context", "failed to read history directory").Wrap(err)
	}

	result := make([]*domain.Entry, 0, min(limit, len(files)))
	for i := len(files) - 1; i >= 0 && len(result) < limit; i-- {
		path := filepath.Join(s.basePath, files[i].Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable history entry", "path", path, "error", err)
			continue
		}

		var entry domain.Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			slog.Warn("Skipping malformed history entry", "path", path, "error", err)
			continue
		}

		result = append(result, &entry)
	}

	return result, nil
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return '_'
	}, id)
}
